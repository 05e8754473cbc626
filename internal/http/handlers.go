package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"finledger/internal/core"
	"finledger/internal/export"
	"finledger/internal/ledger"
	"finledger/internal/log"
	"finledger/internal/services"
)

type transactionsResponse struct {
	Range        ledger.DateRange   `json:"range"`
	Count        int                `json:"count"`
	Transactions []core.Transaction `json:"transactions"`
}

type createdResponse struct {
	Transaction core.Transaction `json:"transaction"`
	Total       int              `json:"total"`
}

type reportResponse struct {
	ledger.Report
	ProgressText string `json:"progress_text"`
}

type categoriesResponse struct {
	Categories []core.Category `json:"categories"`
	Types      []core.Type     `json:"types"`
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.ledger == nil {
		ServiceUnavailableError("ledger not loaded").Write(w)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"status":  "ready",
		"backend": s.ledger.Backend(),
		"count":   s.ledger.Count(),
	}).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().Body(categoriesResponse{
		Categories: core.Categories(),
		Types:      core.Types(),
	}).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	rng, err := ParseRange(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	txs := s.ledger.History(rng)
	if txs == nil {
		txs = []core.Transaction{}
	}
	fields := log.NewFields().WithOperation(log.OpList).WithRange(rng.From.String(), rng.To.String())
	log.FromContext(r.Context()).DebugContext(r.Context(), "Listed transactions",
		append(fields.ToSlice(), log.FieldCount, len(txs))...)
	NewJSONResponse().Body(transactionsResponse{
		Range:        rng,
		Count:        len(txs),
		Transactions: txs,
	}).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}

	in, err := services.ParseInput(parser.RawInput())
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			logger.WarnContext(ctx, "Rejected transaction input",
				log.FieldOperation, log.OpValidate,
				"field", ve.Field,
				log.FieldError, ve.Err)
			UnprocessableEntityError(ve.Field, ve.Error()).Write(w)
			return
		}
		BadRequestError(err.Error()).Write(w)
		return
	}

	tx, err := s.ledger.Add(ctx, in)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to record transaction",
			log.FieldOperation, log.OpAppend,
			log.FieldErrorType, log.ErrorTypeStorage,
			log.FieldError, err)
		InternalServerError("could not save transaction").Write(w)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Body(createdResponse{Transaction: tx, Total: s.ledger.Count()}).
		Write(w)
}

func (s *Server) handleClearTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.ledger.Clear(ctx); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to clear ledger",
			log.FieldOperation, log.OpDelete,
			log.FieldErrorType, log.ErrorTypeStorage,
			log.FieldError, err)
		InternalServerError("could not clear ledger").Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	rng, err := ParseRange(query)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	goal, err := ParseGoal(query)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	rep, err := s.ledger.Report(rng, goal)
	if err != nil {
		fields := log.NewFields().
			WithOperation(log.OpReport).
			WithRange(rng.From.String(), rng.To.String()).
			WithError(err)
		fields[log.FieldErrorType] = log.ErrorTypeInternal
		log.FromContext(ctx).ErrorContext(ctx, "Failed to compute report", fields.ToSlice()...)
		InternalServerError("could not compute report").Write(w)
		return
	}

	NewJSONResponse().Body(reportResponse{
		Report:       rep,
		ProgressText: ledger.ProgressText(rep.Summary.Savings, rep.Goal),
	}).Write(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	format, err := export.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	rng, err := ParseRange(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	txs := s.ledger.Transactions(rng)
	var buf bytes.Buffer
	if err := s.exporter.Write(&buf, format, txs); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to export ledger",
			log.FieldOperation, log.OpExport,
			log.FieldErrorType, log.ErrorTypeInternal,
			log.FieldError, err)
		InternalServerError("could not export ledger").Write(w)
		return
	}

	fields := log.NewFields().
		WithComponent(log.ComponentExport).
		WithOperation(log.OpExport).
		WithRange(rng.From.String(), rng.To.String())
	log.FromContext(ctx).InfoContext(ctx, "Ledger exported",
		append(fields.ToSlice(), log.FieldCount, len(txs), "format", format)...)

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(s.now())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}
