package packets

// StartPlaybackRequest opens an audio session; any other active session,
// including a ringing alarm's sound, is evicted first.
type StartPlaybackRequest struct {
	Source string `json:"source" binding:"required"` // e.g. "surah", "preview"
	Track  string `json:"track"`                     // e.g. "al-mulk", "bell"
}

type StopPlaybackRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

type SessionResponse struct {
	SessionID string `json:"session_id"`
	Source    string `json:"source"`
	Track     string `json:"track,omitempty"`
	StartedAt string `json:"started_at"` // RFC3339
}

type CurrentPlaybackResponse struct {
	Active  bool             `json:"active"`
	Session *SessionResponse `json:"session,omitempty"`
	Handle  string           `json:"handle,omitempty"` // arbiter handle, e.g. "alarm:ring"
}
