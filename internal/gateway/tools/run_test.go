package tools

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/outcome"
	"github.com/stretchr/testify/require"
)

func TestRunAnalysis_DirectResult(t *testing.T) {
	t.Parallel()

	var h *harness
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analytics/api/analysis-query", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "DATA_ONLY", body["resultType"])
		require.Equal(t, map[string]any{"variant": "LIST"}, body["queryObject"])
		writeJSON(w, `{"resultUrl":"`+h.srv.URL+`/analytics/api/analysis-result/c1"}`)
	})
	mux.HandleFunc("GET /analytics/api/analysis-result/c1", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"headers":["a"],"rows":[[1],[2]]}`)
	})
	h = newHarness(t, mux)

	res, err := h.orch.Invoke(authed(), "run_analysis", Args{"queryObject": map[string]any{"variant": "LIST"}})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"headers": []any{"a"}, "rows": []any{[]any{float64(1)}, []any{float64(2)}}}, res.Data)
}

func TestRunAnalysis_PollsStatus(t *testing.T) {
	t.Parallel()

	var h *harness
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analytics/api/analysis-query", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"correlationId":"q1","statusUrl":"`+h.srv.URL+`/analytics/api/analysis-query/q1"}`)
	})
	mux.HandleFunc("GET /analytics/api/analysis-query/q1", func(w http.ResponseWriter, _ *http.Request) {
		if polls.Add(1) == 1 {
			writeJSON(w, `{"status":"RUNNING"}`)
			return
		}
		writeJSON(w, `{"status":"SUCCESS","resultUrl":"`+h.srv.URL+`/analytics/api/analysis-result/c1"}`)
	})
	mux.HandleFunc("GET /analytics/api/analysis-result/c1", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"rows":[]}`)
	})
	h = newHarness(t, mux)

	res, err := h.orch.Invoke(authed(), "run_analysis", Args{"queryObject": map[string]any{}, "resultType": "FULL"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"rows": []any{}}, res.Data)
	require.EqualValues(t, 2, polls.Load())
}

func TestRunAnalysis_EmptyResultURLPollsStatus(t *testing.T) {
	t.Parallel()

	var h *harness
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analytics/api/analysis-query", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"resultUrl":"","statusUrl":"`+h.srv.URL+`/analytics/api/analysis-query/q1"}`)
	})
	mux.HandleFunc("GET /analytics/api/analysis-query/q1", func(w http.ResponseWriter, _ *http.Request) {
		polls.Add(1)
		writeJSON(w, `{"status":"SUCCESS","resultUrl":"`+h.srv.URL+`/analytics/api/analysis-result/c1"}`)
	})
	mux.HandleFunc("GET /analytics/api/analysis-result/c1", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"rows":[[7]]}`)
	})
	h = newHarness(t, mux)

	res, err := h.orch.Invoke(authed(), "run_analysis", Args{"queryObject": map[string]any{}})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"rows": []any{[]any{float64(7)}}}, res.Data)
	require.EqualValues(t, 1, polls.Load())
}

func TestRunAnalysis_Failures(t *testing.T) {
	t.Parallel()

	t.Run("untrusted result url", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /analytics/api/analysis-query", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, `{"resultUrl":"https://attacker.example/steal"}`)
		})
		h := newHarness(t, mux)

		_, err := h.orch.Invoke(authed(), "run_analysis", Args{"queryObject": map[string]any{}})
		oe := requireOutcome(t, err, outcome.Internal)
		require.Equal(t, "Untrusted upstream URL origin: https://attacker.example", oe.Message)
	})

	t.Run("query failed", func(t *testing.T) {
		var h *harness
		mux := http.NewServeMux()
		mux.HandleFunc("POST /analytics/api/analysis-query", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, `{"statusUrl":"`+h.srv.URL+`/analytics/api/analysis-query/q1"}`)
		})
		mux.HandleFunc("GET /analytics/api/analysis-query/q1", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, `{"status":"ERROR"}`)
		})
		h = newHarness(t, mux)

		_, err := h.orch.Invoke(authed(), "run_analysis", Args{"queryObject": map[string]any{}})
		oe := requireOutcome(t, err, outcome.Internal)
		require.Equal(t, "Query failed (ERROR)", oe.Message)
	})

	t.Run("polling exhausted", func(t *testing.T) {
		var h *harness
		mux := http.NewServeMux()
		mux.HandleFunc("POST /analytics/api/analysis-query", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, `{"statusUrl":"`+h.srv.URL+`/analytics/api/analysis-query/q1"}`)
		})
		mux.HandleFunc("GET /analytics/api/analysis-query/q1", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, `{"status":"RUNNING"}`)
		})
		h = newHarness(t, mux)

		_, err := h.orch.Invoke(authed(), "run_analysis", Args{"queryObject": map[string]any{}})
		oe := requireOutcome(t, err, outcome.Internal)
		require.Equal(t, "Query did not complete after 3 polling attempts", oe.Message)
	})
}

func TestRunAnalysis_NoLinks(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /analytics/api/analysis-query", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"correlationId":"q1"}`)
	})
	h := newHarness(t, mux)

	res, err := h.orch.Invoke(authed(), "run_analysis", Args{"queryObject": map[string]any{}})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"correlationId": "q1"}, res.Data)
}

func TestRunReport(t *testing.T) {
	t.Parallel()

	var h *harness
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analytics/api/report-query", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, map[string]any{"id": float64(42), "elementIds": []any{float64(1), float64(2)}}, body)
		writeJSON(w, `{"reportCorrelationId":"rep-1"}`)
	})
	mux.HandleFunc("GET /analytics/api/report-query/rep-1", func(w http.ResponseWriter, _ *http.Request) {
		if polls.Add(1) == 1 {
			writeJSON(w, `{"status":"RUNNING","queryStates":[{"elementId":1,"status":"RUNNING"}]}`)
			return
		}
		writeJSON(w, `{"status":"DONE","queryStates":[
			{"elementId":1,"status":"SUCCESS","resultUrl":"`+h.srv.URL+`/analytics/api/analysis-result/e1"},
			{"elementId":2,"status":"SUCCESS","resultUrl":"https://attacker.example/e2"},
			{"elementId":3,"status":"FAILED","error":"quota"}
		]}`)
	})
	mux.HandleFunc("GET /analytics/api/analysis-result/e1", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"rows":[[1]]}`)
	})
	h = newHarness(t, mux)

	res, err := h.orch.Invoke(authed(), "run_report", Args{"id": float64(42), "elementIds": []any{float64(1), float64(2)}})
	require.NoError(t, err)

	data := res.Data.(map[string]any)
	require.Equal(t, "rep-1", data["reportCorrelationId"])
	require.Equal(t, "DONE", data["reportStatus"])

	elements := data["elements"].([]any)
	require.Len(t, elements, 3)
	require.Equal(t, map[string]any{"elementId": float64(1), "rows": []any{[]any{float64(1)}}}, elements[0])
	require.Equal(t, map[string]any{"elementId": float64(2), "error": "Untrusted upstream URL origin: https://attacker.example"}, elements[1])
	require.Equal(t, map[string]any{"elementId": float64(3), "status": "FAILED", "error": "quota"}, elements[2])
}

func TestRunReport_Exhausted(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /analytics/api/report-query", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"reportCorrelationId":"rep-1"}`)
	})
	mux.HandleFunc("GET /analytics/api/report-query/rep-1", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"status":"RUNNING"}`)
	})
	h := newHarness(t, mux)

	_, err := h.orch.Invoke(authed(), "run_report", nil)
	oe := requireOutcome(t, err, outcome.Internal)
	require.Equal(t, "Report did not complete after 3 polling attempts", oe.Message)
}

func TestRunReport_NoCorrelationID(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /analytics/api/report-query", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"message":"accepted"}`)
	})
	h := newHarness(t, mux)

	res, err := h.orch.Invoke(authed(), "run_report", Args{"configuration": map[string]any{"x": 1}})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"message": "accepted"}, res.Data)
}

func TestReportBody_Validation(t *testing.T) {
	t.Parallel()

	_, err := reportBody(Args{"elementIds": []any{"a"}})
	require.Error(t, err)
	_, err = reportBody(Args{"id": "7"})
	require.Error(t, err)
	_, err = reportBody(Args{"configuration": []any{}})
	require.Error(t, err)

	body, err := reportBody(Args{})
	require.NoError(t, err)
	require.Empty(t, body)
}
