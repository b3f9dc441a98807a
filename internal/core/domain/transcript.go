package domain

// SelectedFile is a transcript chosen by the user. It lives only in memory.
type SelectedFile struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Content  []byte `json:"-"`
}

func (f *SelectedFile) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Content)
}

type Summary struct {
	Text string `json:"summary"`
}
