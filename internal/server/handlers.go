package server

import (
	"bytes"
	"embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"StockAdvisor/internal/collector"
	"StockAdvisor/internal/model"
	"StockAdvisor/internal/pipeline"
	"StockAdvisor/internal/report"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type valuationView struct {
	Symbol    string
	PE        string
	PB        string
	MarketCap string
}

type pageData struct {
	Symbol1 string
	Symbol2 string
	Period  string
	Periods []model.Period
	Error   string

	Report          *model.Report
	Valuations      []valuationView
	VolatilityChart template.URL
	PriceChart      template.URL
}

func (s *Server) newPage(req pipeline.Request) *pageData {
	return &pageData{
		Symbol1: req.Symbol1,
		Symbol2: req.Symbol2,
		Period:  string(req.Period),
		Periods: model.SelectablePeriods,
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "stock-advisor",
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, s.newPage(s.defaults))
}

// handleReport runs one comparison from the dashboard form.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		page := s.newPage(s.defaults)
		page.Error = "Invalid form: " + err.Error()
		s.render(w, http.StatusBadRequest, page)
		return
	}

	req, err := s.requestFrom(r.PostForm.Get("symbol1"), r.PostForm.Get("symbol2"), r.PostForm.Get("period"))
	page := s.newPage(req)
	if err != nil {
		page.Error = err.Error()
		s.render(w, http.StatusBadRequest, page)
		return
	}

	rep, err := s.runner.Run(r.Context(), req)
	if err != nil {
		s.log.Error().Err(err).Str("symbol1", req.Symbol1).Str("symbol2", req.Symbol2).Msg("report failed")
		page.Error = "Report failed: " + err.Error()
		s.render(w, statusFor(err), page)
		return
	}

	page.Report = rep
	page.Valuations = valuationRows(rep)
	charts, err := report.RenderCharts(&rep.Stocks[0].Series, &rep.Stocks[1].Series, "png")
	if err != nil {
		s.log.Error().Err(err).Str("report_id", rep.ID).Msg("render charts")
	} else {
		page.VolatilityChart = pngDataURI(charts.Volatility)
		page.PriceChart = pngDataURI(charts.PriceHistory)
	}
	s.render(w, http.StatusOK, page)
}

func (s *Server) handleAPIReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req, err := s.requestFrom(q.Get("symbol1"), q.Get("symbol2"), q.Get("period"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := s.runner.Run(r.Context(), req)
	if err != nil {
		s.log.Error().Err(err).Str("symbol1", req.Symbol1).Str("symbol2", req.Symbol2).Msg("report failed")
		s.writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleAPIRecent(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	items, err := s.runner.Recent(limit)
	if err != nil {
		s.log.Error().Err(err).Msg("list recent reports")
		s.writeError(w, http.StatusInternalServerError, "could not list reports")
		return
	}

	out := make([]map[string]interface{}, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]interface{}{
			"id":           it.ID,
			"generated_at": it.GeneratedAt,
			"period":       it.Period,
			"symbol1":      it.Symbol1,
			"symbol2":      it.Symbol2,
			"price1":       it.Price1,
			"price2":       it.Price2,
			"volatility1":  it.Volatility1,
			"volatility2":  it.Volatility2,
			"model":        it.Model,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// requestFrom fills blanks from the defaults and upper-cases symbols.
func (s *Server) requestFrom(symbol1, symbol2, period string) (pipeline.Request, error) {
	req := pipeline.Request{
		Symbol1: strings.ToUpper(strings.TrimSpace(symbol1)),
		Symbol2: strings.ToUpper(strings.TrimSpace(symbol2)),
		Period:  s.defaults.Period,
	}
	if req.Symbol1 == "" {
		req.Symbol1 = s.defaults.Symbol1
	}
	if req.Symbol2 == "" {
		req.Symbol2 = s.defaults.Symbol2
	}
	if period != "" {
		p, err := model.ParsePeriod(period)
		if err != nil {
			return req, err
		}
		req.Period = p
	}
	return req, nil
}

// statusFor maps a run error to an HTTP status. Upstream failures are 502.
func statusFor(err error) int {
	if errors.Is(err, collector.ErrEmptySymbol) || errors.Is(err, model.ErrUnknownPeriod) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func valuationRows(rep *model.Report) []valuationView {
	rows := make([]valuationView, 0, len(rep.Stocks))
	for _, st := range rep.Stocks {
		rows = append(rows, valuationView{
			Symbol:    st.Symbol,
			PE:        st.Valuation.PERatio.String(),
			PB:        st.Valuation.PBRatio.String(),
			MarketCap: report.FormatMarketCap(st.Valuation.MarketCap),
		})
	}
	return rows
}

func pngDataURI(data []byte) template.URL {
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(data))
}

func (s *Server) render(w http.ResponseWriter, status int, page *pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		s.log.Error().Err(err).Msg("render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
