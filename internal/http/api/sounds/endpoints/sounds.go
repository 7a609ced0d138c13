package endpoints

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/layl-app/layl/internal/http/api"
	"github.com/layl-app/layl/internal/model"
	"github.com/layl-app/layl/internal/storage"
)

// builtinSounds are the ring sounds bundled with the client.
var builtinSounds = []model.AlarmSound{
	model.SoundAdhan,
	model.SoundAdhanSoft,
	model.SoundBell,
	model.SoundChime,
	model.SoundSilent,
}

var allowedUploadExts = map[string]bool{
	".mp3": true, ".wav": true, ".ogg": true, ".oga": true,
	".opus": true, ".m4a": true, ".flac": true,
}

// SoundsModule mounts the audio asset endpoints (JWT required).
func SoundsModule(store storage.Storage) api.Module {
	ctl := &soundManager{storage: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/sounds", ctl.listSounds)
		c.POST("/sounds", ctl.uploadSound)
	})
}

type soundManager struct {
	storage storage.Storage
}

// GET /api/sounds
func (m *soundManager) listSounds(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	return gin.H{"builtin": builtinSounds}, nil
}

// POST /api/sounds
func (m *soundManager) uploadSound(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "file is required"}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedUploadExts[ext] {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unsupported audio format"}
	}

	url, err := m.storage.SaveFile(fileHeader, fileHeader.Filename)
	if err != nil {
		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("sound upload failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not store file"}
	}

	return gin.H{"url": url}, nil
}
