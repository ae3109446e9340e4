package gateway

import "encoding/json"

// wireResponse is the subset of the gateway's response body the client reads.
// Error is kept raw so that field presence can be distinguished from an empty
// object.
type wireResponse struct {
	Choices []wireChoice    `json:"choices"`
	Error   json.RawMessage `json:"error"`
}

type wireChoice struct {
	Message struct {
		Content *string `json:"content"`
	} `json:"message"`
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// envelope is the typed result of parsing one response body. The state
// machine consumes it instead of probing raw JSON: exactly one of
// {success content, structured error, unrecognized shape} applies.
type envelope struct {
	parsed     bool // body was valid JSON of the expected object shape
	hasContent bool // choices[0].message.content present
	content    string
	hasError   bool // a non-null error field was present
	errCode    string
	errMessage string
}

// parseBody parses a response body once into an envelope. Bodies that are not
// JSON objects of the expected shape come back with parsed == false.
func parseBody(body []byte) envelope {
	var resp wireResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return envelope{}
	}

	env := envelope{parsed: true}

	if len(resp.Error) > 0 && string(resp.Error) != "null" {
		env.hasError = true

		var we wireError
		if err := json.Unmarshal(resp.Error, &we); err == nil {
			env.errCode = we.Code
			env.errMessage = we.Message
		}
	}

	// The server message falls back to the whole body so errors without a
	// message field still carry something diagnosable.
	if env.errMessage == "" {
		env.errMessage = string(body)
	}

	if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != nil {
		env.hasContent = true
		env.content = *resp.Choices[0].Message.Content
	}

	return env
}
