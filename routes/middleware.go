package routes

import "net/http"

// maxLoggedBody caps how much of an error body the access log keeps
const maxLoggedBody = 1024

// statusRecorder remembers the status code and the start of the body for the access log
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        []byte
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader keeps the first status, like net/http does
func (sr *statusRecorder) WriteHeader(code int) {
	if sr.wroteHeader {
		return
	}

	sr.status = code
	sr.wroteHeader = true
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	sr.wroteHeader = true

	if room := maxLoggedBody - len(sr.body); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		sr.body = append(sr.body, b[:room]...)
	}

	return sr.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}
