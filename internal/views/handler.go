package views

import (
	"context"
	"net/http"

	"CollegeNoticeBoard/internal/auth"
	"CollegeNoticeBoard/internal/core"
	"CollegeNoticeBoard/internal/notice"
	"CollegeNoticeBoard/pkg/response"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Notices finds a notice in the caller's visible feed.
type Notices interface {
	Locate(ctx context.Context, role auth.Role, id string) (notice.Position, error)
}

type ViewHandler struct {
	ledger  *Ledger
	notices Notices
	logger  *zap.Logger
}

func NewViewHandler(ledger *Ledger, notices Notices, logger *zap.Logger) *ViewHandler {
	return &ViewHandler{ledger: ledger, notices: notices, logger: logger.Named("views-http")}
}

func (h *ViewHandler) visible(c echo.Context, identity auth.Identity) (*notice.Notice, error) {
	pos, err := h.notices.Locate(c.Request().Context(), identity.Role, c.Param("id"))
	if err != nil {
		return nil, err
	}
	if !pos.Found() {
		return nil, core.ErrNotFound
	}
	return pos.Current, nil
}

// List returns the merged viewers of a notice.
func (h *ViewHandler) List(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	n, err := h.visible(c, identity)
	if err != nil {
		return response.Error(c, err)
	}
	viewers, err := h.ledger.Snapshot(c.Request().Context(), *n)
	if err != nil {
		h.logger.Error("list viewers", zap.String("notice", n.ID), zap.Error(err))
		return response.Error(c, err)
	}
	return c.JSON(http.StatusOK, viewers)
}

// Record marks the notice as seen by the caller.
func (h *ViewHandler) Record(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	n, err := h.visible(c, identity)
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.ledger.RecordView(c.Request().Context(), n.ID, identity); err != nil {
		return response.Error(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "View recorded"})
}

// Stream runs a detail session and pushes each Detail as an SSE event.
func (h *ViewHandler) Stream(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}
	ctx := c.Request().Context()
	updates := core.NewLatest[Detail]()
	failures := make(chan error, 1)
	closeSession := h.ledger.Open(ctx, identity, c.Param("id"), updates.Put, func(err error) {
		select {
		case failures <- err:
		default:
		}
	})
	defer closeSession()

	stream := response.NewEventStream(c)
	for {
		select {
		case <-ctx.Done():
			return nil
		case detail := <-updates.C():
			if err := stream.Send("detail", detail); err != nil {
				return nil
			}
		case err := <-failures:
			_ = stream.SendError(err)
			return nil
		}
	}
}
