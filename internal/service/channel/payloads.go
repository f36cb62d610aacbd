package channel

// One request type per send operation so required fields are enforced per
// variant instead of through a catch-all payload.

// TextPayload is a free-form text send.
type TextPayload struct {
	Body string `json:"body"`
}

// TemplatePayload is a pre-approved template send. Parameters must cover
// every placeholder of the template.
type TemplatePayload struct {
	Name       string   `json:"name"`
	Language   string   `json:"language"`
	Parameters []string `json:"parameters"`
}

// MediaPayload is an image/video/audio/document send by provider-fetchable URL.
type MediaPayload struct {
	Kind     string `json:"kind"`
	URL      string `json:"url"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// Button is one quick-reply option of an interactive message.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// InteractivePayload is a button message: a body plus 1-3 quick replies.
type InteractivePayload struct {
	Body    string   `json:"body"`
	Buttons []Button `json:"buttons"`
}
