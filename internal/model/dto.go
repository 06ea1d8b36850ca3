package model

// FilingJob is the queue payload for asynchronous filing. Audio is carried
// inline (base64 in JSON); clips are short.
type FilingJob struct {
	SubmissionID string `json:"submission_id"`
	Period       string `json:"period"`
	Section      string `json:"section"`
	Lesson       string `json:"lesson"`
	Group        string `json:"group"`
	Members      string `json:"members"`
	Audio        []byte `json:"audio"`
}

func NewFilingJob(id string, rc RecordingContext, sub Submission) FilingJob {
	return FilingJob{
		SubmissionID: id,
		Period:       rc.Period(),
		Section:      rc.Section(),
		Lesson:       rc.Lesson(),
		Group:        sub.Group,
		Members:      sub.Members,
		Audio:        sub.Audio,
	}
}

func (j FilingJob) Submission() Submission {
	return Submission{Group: j.Group, Members: j.Members, Audio: j.Audio}
}

type LinkRequest struct {
	Year   string `json:"year"`
	Class  string `json:"class"`
	Lesson string `json:"lesson"`
}

type LinkResponse struct {
	URL     string      `json:"url"`
	Context ContextView `json:"context"`
}

type QueuedResponse struct {
	SubmissionID string           `json:"submission_id"`
	Status       SubmissionStatus `json:"status"`
}

type RecordingResponse struct {
	SubmissionID string       `json:"submission_id,omitempty"`
	Result       UploadResult `json:"result"`
}
