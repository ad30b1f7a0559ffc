package publish

// Result is the tagged outcome of one publish step. Publish failures are
// data, not errors: the generation response simply lacks the URL.
type Result struct {
	OK    bool   `json:"ok"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

func Success(url string) Result { return Result{OK: true, URL: url} }

func Failure(err error) Result {
	if err == nil {
		return Result{OK: false, Error: "unknown failure"}
	}
	return Result{OK: false, Error: err.Error()}
}
