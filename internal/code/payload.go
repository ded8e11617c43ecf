package code

// JobType is the job_type of queued code runs in the jobs table.
const JobType = "code.execute"

// JobPayload is the serialized form of a code.execute job stored in the jobs table.
// Stdin, when set, is used verbatim and the input fragments are ignored.
type JobPayload struct {
	LanguageID   int      `json:"language_id"`
	SourceCode   string   `json:"source_code"`
	Inputs       []string `json:"inputs,omitempty"`
	InputEnabled bool     `json:"input_enabled"`
	Stdin        *string  `json:"stdin,omitempty"`
}
