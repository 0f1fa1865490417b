package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/agentstation/platemap"
	"github.com/agentstation/platemap/internal/server/response"
	"github.com/agentstation/platemap/internal/tabular"
	"github.com/agentstation/platemap/pkg/coverage"
	"github.com/agentstation/platemap/pkg/errors"
	"github.com/agentstation/platemap/pkg/logging"
)

// QueryRequest is the JSON body of POST /api/v1/query.
type QueryRequest struct {
	Agencies []string `json:"agencies,omitempty"`
	Plate    string   `json:"plate,omitempty"`
	// Schema tags Rows directly. When empty, Filename is resolved instead.
	Schema   string `json:"schema,omitempty"`
	Filename string `json:"filename,omitempty"`
	// Rows is the coverage table, one object per row keyed by column.
	Rows []map[string]any `json:"rows,omitempty"`
}

// HandleQuery handles POST /api/v1/query. Query outcomes, including "no
// data" and "invalid file", are returned with status 200.
func (h *Handlers) HandleQuery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	var body QueryRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		if tooLarge(err) {
			response.RequestTooLarge(w, err.Error())
			return
		}
		if err == io.EOF {
			response.BadRequest(w, "Request body is required", "")
			return
		}
		response.ErrorFromType(w, errors.WrapParse("json", "request body", err))
		return
	}

	req := platemap.Request{
		Agencies: body.Agencies,
		Plate:    body.Plate,
		Schema:   h.schemaFor(body.Schema, body.Filename),
	}
	if body.Rows != nil {
		req.Rows = coverage.FromTable(tabular.FromRecords(body.Rows))
	}

	h.respond(w, r, "query", req)
}

// HandleUpload handles POST /api/v1/query/upload: a multipart form with an
// optional "file" (CSV, JSON, YAML or xlsx), a "plate" and repeated "agency"
// fields. The schema comes from the "schema" field or the file's name. A
// file that cannot be decoded is treated as an invalid file.
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		if tooLarge(err) {
			response.RequestTooLarge(w, err.Error())
			return
		}
		response.BadRequest(w, "Invalid multipart form", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp file cleanup

	req := platemap.Request{
		Agencies: r.MultipartForm.Value["agency"],
		Plate:    r.FormValue("plate"),
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close() //nolint:errcheck // multipart file
		req.Schema = h.schemaFor(r.FormValue("schema"), header.Filename)
		rows, ok := h.decodeUpload(r, file, header)
		if !ok {
			req.Schema = coverage.SchemaUnknown
		}
		req.Rows = rows
	case err == http.ErrMissingFile:
	default:
		response.BadRequest(w, "Invalid file field", err.Error())
		return
	}

	h.respond(w, r, "upload", req)
}

// decodeUpload decodes an uploaded table. On failure it returns an empty
// table and false; the caller marks the schema unknown so the dispatcher
// reports an invalid file.
func (h *Handlers) decodeUpload(r *http.Request, file multipart.File, header *multipart.FileHeader) ([]coverage.RawRecord, bool) {
	rows, err := coverage.Decode(file, header.Filename)
	if err != nil {
		logging.FromContextOr(r.Context(), h.logger).Debug().
			Err(err).
			Str("filename", header.Filename).
			Msg("Upload could not be decoded")
		return []coverage.RawRecord{}, false
	}
	return rows, true
}

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, operation string, req platemap.Request) {
	ctx := logging.WithOperation(r.Context(), operation)
	if req.Plate != "" {
		ctx = logging.WithPlate(ctx, req.Plate)
	}
	if req.Schema != "" {
		ctx = logging.WithSchema(ctx, req.Schema.String())
	}
	if len(req.Agencies) > 0 {
		ctx = logging.WithAgencies(ctx, req.Agencies)
	}
	response.OK(w, h.platemap.Query(ctx, req))
}

// schemaFor prefers an explicit tag over the file name. An explicit tag of
// an unknown value stays unknown.
func (h *Handlers) schemaFor(tag, filename string) coverage.Schema {
	if strings.TrimSpace(tag) != "" {
		return coverage.ParseSchema(tag)
	}
	return h.platemap.ResolveSchema(filename)
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
