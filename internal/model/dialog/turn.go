package dialog

// Button is a quick-reply affordance attached to a bot turn. Value is what
// the client sends back when the button is tapped.
type Button struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Reply is one outbound bot turn. A single inbound message may yield
// several replies which must be delivered (and logged) in order.
type Reply struct {
	Text    string   `json:"text"`
	Buttons []Button `json:"buttons,omitempty"`
}

// Text builds a plain reply with no buttons.
func Text(text string) Reply {
	return Reply{Text: text}
}
