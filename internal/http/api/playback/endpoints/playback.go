package endpoints

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/layl-app/layl/internal/audio"
	"github.com/layl-app/layl/internal/http/api"
	"github.com/layl-app/layl/internal/http/api/playback/packets"
	"github.com/layl-app/layl/internal/model"
)

// PlaybackModule mounts the media playback session endpoints (JWT required).
// Sessions cover recitation and ambient audio started from the client; the
// arbiter guarantees they never overlap with each other or the alarm ring.
func PlaybackModule(arbiter *audio.Arbiter) api.Module {
	ctl := &playbackManager{arbiter: arbiter}
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/playback/start", ctl.startPlayback)
		c.POST("/playback/stop", ctl.stopPlayback)
		c.GET("/playback/current", ctl.currentPlayback)
	})
}

type session struct {
	id        string
	source    string
	track     string
	startedAt time.Time
}

type playbackManager struct {
	arbiter *audio.Arbiter

	mu      sync.Mutex
	current *session
}

// POST /api/playback/start
func (m *playbackManager) startPlayback(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	var request packets.StartPlaybackRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	s := &session{
		id:        uuid.NewString(),
		source:    request.Source,
		track:     request.Track,
		startedAt: time.Now(),
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	m.arbiter.Register(s.id, func() {
		m.mu.Lock()
		if m.current != nil && m.current.id == s.id {
			m.current = nil
		}
		m.mu.Unlock()
		log.Debug().Str("session_id", s.id).Str("source", s.source).Msg("playback session evicted")
	})

	return packets.SessionResponse{
		SessionID: s.id,
		Source:    s.source,
		Track:     s.track,
		StartedAt: s.startedAt.Format(time.RFC3339),
	}, nil
}

// POST /api/playback/stop
func (m *playbackManager) stopPlayback(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	var request packets.StopPlaybackRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	m.mu.Lock()
	if m.current != nil && m.current.id == request.SessionID {
		m.current = nil
	}
	m.mu.Unlock()

	// stale session ids fall through harmlessly
	m.arbiter.Unregister(request.SessionID)
	return gin.H{"status": "stopped"}, nil
}

// GET /api/playback/current
func (m *playbackManager) currentPlayback(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	handle := m.arbiter.Current()
	if handle == "" {
		return packets.CurrentPlaybackResponse{Active: false}, nil
	}

	resp := packets.CurrentPlaybackResponse{Active: true, Handle: handle}

	m.mu.Lock()
	if m.current != nil && m.current.id == handle {
		resp.Session = &packets.SessionResponse{
			SessionID: m.current.id,
			Source:    m.current.source,
			Track:     m.current.track,
			StartedAt: m.current.startedAt.Format(time.RFC3339),
		}
	}
	m.mu.Unlock()

	return resp, nil
}
