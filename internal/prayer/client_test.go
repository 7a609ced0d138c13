package prayer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func TestTimingsParsesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/timings/01-03-2026")
		assert.Equal(t, "4", r.URL.Query().Get("method"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code":200,"status":"OK","data":{"timings":{
			"Fajr":"05:10 (BST)","Sunrise":"06:25","Dhuhr":"12:30","Asr":"15:45",
			"Maghrib":"18:20","Isha":"19:50"}}}`)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	pt := client.Timings(context.Background(), testDate, 21.4225, 39.8262)
	require.NotNil(t, pt)

	assert.Equal(t, "2026-03-01", pt.Date)
	assert.Equal(t, "05:10", pt.Fajr) // timezone label stripped
	assert.Equal(t, "18:20", pt.Maghrib)
	assert.Equal(t, "19:50", pt.Isha)
}

func TestTimingsNilOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	assert.Nil(t, client.Timings(context.Background(), testDate, 0, 0))
}

func TestTimingsNilOnPartialRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code":200,"status":"OK","data":{"timings":{"Dhuhr":"12:30"}}}`)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	assert.Nil(t, client.Timings(context.Background(), testDate, 0, 0))
}

func TestTimingsNilOnAPIErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code":400,"status":"Bad Request","data":{}}`)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	assert.Nil(t, client.Timings(context.Background(), testDate, 0, 0))
}
