package ui

import (
	"bytes"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"rxprev/adapters/api"
	"rxprev/adapters/tsv"
	"rxprev/app"
	"rxprev/domain/core"
	"rxprev/domain/prevalence"
	"rxprev/internal/analysis"
	"rxprev/internal/config"
	"rxprev/internal/errors"

	"github.com/gin-gonic/gin"
)

// tsvContentType is served for report bodies
const tsvContentType = "text/tab-separated-values; charset=utf-8"

// reportResponse is the JSON rendering of a report
type reportResponse struct {
	RunID   core.RunID        `json:"run_id"`
	Gene    string            `json:"gene"`
	Test    string            `json:"test"`
	Source  string            `json:"source"`
	Summary *analysis.Summary `json:"summary,omitempty"`
	prevalence.Table
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": s.container.RunRepo != nil,
	})
}

func (s *Server) handleGenes(c *gin.Context) {
	c.JSON(http.StatusOK, s.container.Genes.All())
}

// handlePrevalence builds a report from the JSON observations in the body
func (s *Server) handlePrevalence(c *gin.Context) {
	gene, err := s.container.Genes.Validate(c.Param("gene"))
	if err != nil {
		s.fail(c, err)
		return
	}

	report, err := s.reportConfig(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		s.fail(c, errors.InvalidInput("failed to read request body", err))
		return
	}
	observations, err := api.DecodeObservations(body, c.Query("data_path"))
	if err != nil {
		s.fail(c, err)
		return
	}

	svc, err := s.container.PrevalenceService(report)
	if err != nil {
		s.fail(c, err)
		return
	}
	result, err := svc.BuildReport(c.Request.Context(), app.ReportRequest{
		Gene:   gene,
		Layout: report.Layout(),
		Batch: &prevalence.Batch{
			Source:       "http:" + c.ClientIP(),
			Fingerprint:  core.NewHash(body),
			Observations: observations,
		},
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Header("X-Run-Id", result.Run.ID.String())
	s.respondTable(c, result.Run, &result.Summary)
}

func (s *Server) handleListRuns(c *gin.Context) {
	svc, err := s.container.PrevalenceService(s.container.Config.Report)
	if err != nil {
		s.fail(c, err)
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			s.fail(c, errors.InvalidInput("limit must be a non-negative integer", err))
			return
		}
	}

	runs, err := svc.ListRuns(c.Request.Context(), strings.ToUpper(c.Query("gene")), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (s *Server) handleGetRun(c *gin.Context) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		s.fail(c, errors.InvalidInput("invalid run id", err))
		return
	}
	svc, err := s.container.PrevalenceService(s.container.Config.Report)
	if err != nil {
		s.fail(c, err)
		return
	}

	run, err := svc.GetRun(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respondTable(c, run, nil)
}

// respondTable writes JSON when the client asks for it and TSV otherwise
func (s *Server) respondTable(c *gin.Context, run *prevalence.Run, summary *analysis.Summary) {
	table := run.Table()
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.JSON(http.StatusOK, reportResponse{
			RunID:   run.ID,
			Gene:    run.Gene,
			Test:    run.Test,
			Source:  run.Source,
			Summary: summary,
			Table:   table,
		})
		return
	}

	var buf bytes.Buffer
	if err := tsv.NewWriter(&buf).WriteReport(table); err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, tsvContentType, buf.Bytes())
}

// reportConfig applies the query overrides to the configured report settings
func (s *Server) reportConfig(c *gin.Context) (config.ReportConfig, error) {
	cfg := *s.container.Config
	report := cfg.Report
	report.MajorSubtypes = slices.Clone(report.MajorSubtypes)

	if v, ok := c.GetQuery("subtypes"); ok {
		report.MajorSubtypes = config.SplitList(v)
	}
	if v, ok := c.GetQuery("test"); ok {
		report.Test = strings.ToLower(v)
	}
	for name, dst := range map[string]*bool{
		"no_subtype":     &report.NoSubtype,
		"flag_selection": &report.FlagSelection,
	} {
		v, ok := c.GetQuery(name)
		if !ok {
			continue
		}
		if v == "" {
			*dst = true
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return report, errors.InvalidInput(name+" must be a boolean", err)
		}
		*dst = b
	}

	cfg.Report = report
	if err := cfg.Validate(); err != nil {
		return report, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return report, nil
}

// fail maps an error onto a status code and a JSON error body
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsNotFoundError(err), errors.GetCode(err) == errors.CodeNotFound:
		status = http.StatusNotFound
	case core.IsInputError(err), errors.GetCode(err) == errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.GetCode(err) == errors.CodeConfigInvalid:
		status = http.StatusServiceUnavailable
	}
	code := errors.GetCode(err)
	if !errors.IsAppError(err) {
		code = errors.CodeInternalError
		if status == http.StatusInternalServerError {
			s.logger.Error("Unclassified error on %s: %v", c.Request.URL.Path, err)
		}
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  code,
	})
}
