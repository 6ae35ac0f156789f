package notice

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"CollegeNoticeBoard/internal/auth"
	"CollegeNoticeBoard/internal/core"
	"CollegeNoticeBoard/pkg/response"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// NoticeHandler handles HTTP requests for notices.
type NoticeHandler struct {
	service *NoticeService
	feed    *Feed
	logger  *zap.Logger
}

func NewNoticeHandler(service *NoticeService, feed *Feed, logger *zap.Logger) *NoticeHandler {
	return &NoticeHandler{service: service, feed: feed, logger: logger.Named("notice-http")}
}

// List returns the caller's visible feed, narrowed by query parameters.
func (h *NoticeHandler) List(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	filter, err := parseFilter(c)
	if err != nil {
		return response.Error(c, err)
	}
	notices, err := h.service.List(c.Request().Context(), identity.Role, filter)
	if err != nil {
		h.logger.Error("list notices", zap.Error(err))
		return response.Error(c, err)
	}
	return c.JSON(http.StatusOK, notices)
}

// Get returns a notice with its neighbours in the caller's feed.
func (h *NoticeHandler) Get(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	pos, err := h.service.Locate(c.Request().Context(), identity.Role, c.Param("id"))
	if err != nil {
		h.logger.Error("locate notice", zap.String("id", c.Param("id")), zap.Error(err))
		return response.Error(c, err)
	}
	if !pos.Found() {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Notice not found"})
	}
	return c.JSON(http.StatusOK, pos)
}

// Stream pushes the full visible feed on every change as Server-Sent Events.
func (h *NoticeHandler) Stream(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	ctx := c.Request().Context()
	updates := core.NewLatest[[]Notice]()
	failures := make(chan error, 1)
	unsubscribe := h.feed.Subscribe(ctx, identity.Role, updates.Put, func(err error) { failures <- err })
	defer unsubscribe()

	stream := response.NewEventStream(c)
	for {
		select {
		case <-ctx.Done():
			return nil
		case notices := <-updates.C():
			if err := stream.Send("notices", notices); err != nil {
				return nil
			}
		case err := <-failures:
			_ = stream.SendError(err)
			return nil
		}
	}
}

// Create publishes a notice. The body is either JSON or a multipart form
// with a JSON "payload" field and an optional "file".
func (h *NoticeHandler) Create(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	in, file, closeFile, err := bindNotice(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	defer closeFile()

	id, err := h.service.Create(c.Request().Context(), identity, in, file)
	if err != nil {
		return response.Error(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id, "message": "Notice created successfully"})
}

func (h *NoticeHandler) Update(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	in, file, closeFile, err := bindNotice(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	defer closeFile()

	if err := h.service.Update(c.Request().Context(), identity, c.Param("id"), in, file); err != nil {
		return response.Error(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Notice updated successfully"})
}

func (h *NoticeHandler) Delete(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	if err := h.service.Delete(c.Request().Context(), identity, c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Notice deleted successfully"})
}

// Stats returns dashboard counts over all notices.
func (h *NoticeHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		h.logger.Error("notice stats", zap.Error(err))
		return response.Error(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func bindNotice(c echo.Context) (NoticeInput, *Upload, func(), error) {
	var in NoticeInput
	noop := func() {}

	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		if err := c.Bind(&in); err != nil {
			return in, nil, noop, err
		}
		return in, nil, noop, nil
	}

	if err := json.Unmarshal([]byte(c.FormValue("payload")), &in); err != nil {
		return in, nil, noop, err
	}
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, noop, nil
	}
	if err != nil {
		return in, nil, noop, err
	}
	return openUpload(in, fh)
}

func openUpload(in NoticeInput, fh *multipart.FileHeader) (NoticeInput, *Upload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return in, nil, func() {}, err
	}
	upload := &Upload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}
	return in, upload, func() { f.Close() }, nil
}

func parseFilter(c echo.Context) (ListFilter, error) {
	filter := ListFilter{
		Search:     strings.TrimSpace(c.QueryParam("search")),
		Category:   c.QueryParam("category"),
		Department: c.QueryParam("department"),
		Sort:       c.QueryParam("sort"),
		ActiveOnly: c.QueryParam("active") == "true",
	}
	for param, target := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := c.QueryParam(param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, core.NewValidationError(errors.New("invalid date"), core.FieldError{Field: param, Error: "must be an RFC 3339 timestamp"})
		}
		*target = &t
	}
	return filter, nil
}
