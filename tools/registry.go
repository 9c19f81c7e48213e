package tools

// defaultTools is the built-in device tool set. Risky tools (externally
// visible side effects) carry RequiresConfirmation.
var defaultTools = []Definition{
	{
		Name:        "search_web",
		Description: "Open a web search for a user query.",
		Parameters: []ParamSpec{
			{Name: "query", Type: TypeString},
		},
	},
	{
		Name:        "produce_text",
		Description: "Use the local model to produce text from a prompt.",
		Parameters: []ParamSpec{
			{Name: "prompt", Type: TypeString},
		},
	},
	{
		Name:        "open_url",
		Description: "Open a URL in the system browser.",
		Parameters: []ParamSpec{
			{Name: "urlString", Type: TypeURL},
		},
	},
	{
		Name:        "get_location",
		Description: "Get current device coordinates (with accuracy).",
	},
	{
		Name:        "send_whatsapp",
		Description: "Open WhatsApp or wa.me with a prefilled message.",
		Parameters: []ParamSpec{
			{Name: "phone", Type: TypePhone, Optional: true},
			{Name: "message", Type: TypeString},
		},
		RequiresConfirmation: true,
	},
	{
		Name:        "send_message",
		Description: "Open the SMS composer with recipient and message.",
		Parameters: []ParamSpec{
			{Name: "recipient", Type: TypeString, Optional: true},
			{Name: "message", Type: TypeString},
		},
		RequiresConfirmation: true,
	},
	{
		Name:        "share_content",
		Description: "Open the system share sheet with provided text.",
		Parameters: []ParamSpec{
			{Name: "text", Type: TypeString},
		},
		RequiresConfirmation: true,
	},
	{
		Name:        "wait",
		Description: "Pause execution for N seconds.",
		Parameters: []ParamSpec{
			{Name: "seconds", Type: TypeInt},
		},
	},
}

// DefaultRegistry returns the built-in device tool registry.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(defaultTools)
	if err != nil {
		// defaultTools is a compile-time constant set; a failure here is a
		// programming error.
		panic(err)
	}
	return r
}
