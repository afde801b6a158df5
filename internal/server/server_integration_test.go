package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/gt"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/history"
	"github.com/ayusman/mudra/internal/landmark"
	"github.com/ayusman/mudra/internal/recognizer"
	"github.com/ayusman/mudra/internal/store"
)

type detectBody struct {
	Width  int                    `json:"width"`
	Height int                    `json:"height"`
	Hands  []recognizer.HandInput `json:"hands"`
}

func postDetect(t *testing.T, client *http.Client, url string, hands ...landmark.Hand) *http.Response {
	t.Helper()

	body := detectBody{Width: 640, Height: 480}
	for _, h := range hands {
		body.Hands = append(body.Hands, recognizer.HandInput{
			Landmarks:  h.Points.Points(),
			Handedness: h.Handedness,
			Score:      h.Score,
		})
	}
	data, err := json.Marshal(body)
	gt.NoError(t, err)

	resp, err := client.Post(url+"/api/detect", "application/json", bytes.NewReader(data))
	gt.NoError(t, err)
	return resp
}

func TestAPI_RecognitionWorkflow(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	gt.NoError(t, err)
	defer st.Close()

	hub := NewResultsHub(nil)
	rec := history.NewRecorder(history.DefaultCapacity, history.WithSink(st.History()))
	r := recognizer.New(nil, nil, rec, recognizer.WithPublisher(hub))

	srv := New(Config{Recognizer: r, Archive: st.History(), Hub: hub})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. Subscribe to the result feed
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	gt.NoError(t, err)
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	gt.Equal(t, hub.Clients(), 1)

	// 2. Detect a gesture
	resp := postDetect(t, client, ts.URL, landmark.PeaceLandmarks())
	gt.Equal(t, resp.StatusCode, http.StatusOK)

	var result recognizer.Result
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()
	gt.Equal(t, result.Gesture, gesture.Peace)
	gt.Equal(t, result.Distance, 91.4)
	gt.A(t, result.Landmarks).Length(landmark.NumLandmarks)

	// 3. The result is pushed to subscribers
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	gt.NoError(t, err)
	var pushed recognizer.Result
	gt.NoError(t, json.Unmarshal(msg, &pushed))
	gt.Equal(t, pushed.ID, result.ID)

	// 4. No hand is reported but not recorded
	resp = postDetect(t, client, ts.URL)
	gt.Equal(t, resp.StatusCode, http.StatusOK)
	var noHand map[string]any
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(&noHand))
	resp.Body.Close()
	gt.Equal(t, noHand["gesture"], any("No hand detected"))
	gt.Equal(t, noHand["distance"], any(0.0))

	// 5. History holds the single detection
	resp, err = client.Get(ts.URL + "/api/history")
	gt.NoError(t, err)
	var hist struct {
		Entries  []history.Entry `json:"entries"`
		Capacity int             `json:"capacity"`
	}
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(&hist))
	resp.Body.Close()
	gt.A(t, hist.Entries).Length(1)
	gt.Equal(t, hist.Capacity, 50)

	// 6. Stats
	resp, err = client.Get(ts.URL + "/api/stats")
	gt.NoError(t, err)
	var stats history.Stats
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	gt.Equal(t, stats.Total, int64(1))
	gt.Equal(t, stats.AverageDistance, 91.4)

	// 7. CSV export
	resp, err = client.Get(ts.URL + "/export-log")
	gt.NoError(t, err)
	csvBody, err := io.ReadAll(resp.Body)
	gt.NoError(t, err)
	resp.Body.Close()
	gt.Equal(t, resp.Header.Get("Content-Disposition"), "attachment; filename=gesture_log.csv")
	gt.Equal(t, resp.Header.Get("Content-Type"), "text/csv")
	lines := strings.Split(strings.TrimSpace(string(csvBody)), "\n")
	gt.A(t, lines).Length(2)
	gt.Equal(t, lines[0], "timestamp,gesture,distance")
	gt.S(t, lines[1]).Contains(",Peace Sign,91.4")

	// 8. The archive received the detection
	n, err := st.History().Count(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, n, int64(1))

	resp, err = client.Get(ts.URL + "/api/history/archive?limit=10")
	gt.NoError(t, err)
	gt.Equal(t, resp.StatusCode, http.StatusOK)
	resp.Body.Close()
}

func TestAPI_DetectRejectsInvalidInput(t *testing.T) {
	r := recognizer.New(nil, nil, nil)
	ts := httptest.NewServer(New(Config{Recognizer: r}))
	defer ts.Close()

	short := landmark.FistLandmarks().Points.Points()[:20]
	bodies := []string{
		`not json`,
		`{"width":0,"height":480,"hands":[]}`,
		mustJSON(t, detectBody{Width: 640, Height: 480, Hands: []recognizer.HandInput{{Landmarks: short}}}),
	}

	for _, body := range bodies {
		resp, err := ts.Client().Post(ts.URL+"/api/detect", "application/json", strings.NewReader(body))
		gt.NoError(t, err)

		var e struct {
			Error string `json:"error"`
		}
		gt.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
		resp.Body.Close()

		gt.Equal(t, resp.StatusCode, http.StatusBadRequest)
		gt.NotEqual(t, e.Error, "")
	}

	gt.Equal(t, r.Recorder().Len(), 0)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	gt.NoError(t, err)
	return string(data)
}
