package routehandlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreybb/locallibrary/auth"
	"github.com/coreybb/locallibrary/circulation"
	"github.com/coreybb/locallibrary/models"
	"github.com/coreybb/locallibrary/validator"
	"github.com/coreybb/locallibrary/webutil"
)

type BookCopyStore interface {
	CreateBookCopy(ctx context.Context, c *models.BookCopy) error
	GetBookCopyByID(ctx context.Context, copyID string) (*models.BookCopy, error)
	DeleteBookCopy(ctx context.Context, copyID string) error
}

// BookCopyHandler serves copy records and the loan workflow. Every status
// change goes through the lifecycle manager.
type BookCopyHandler struct {
	Repo    BookCopyStore
	Manager *circulation.Manager
}

func NewBookCopyHandler(repo BookCopyStore, manager *circulation.Manager) *BookCopyHandler {
	return &BookCopyHandler{Repo: repo, Manager: manager}
}

type copyResponse struct {
	models.BookCopy
	IsOverdue bool `json:"is_overdue"`
}

type renewalProposalResponse struct {
	Copy            copyResponse `json:"copy"`
	ProposedDueBack models.Date  `json:"proposed_due_back"`
}

func (h *BookCopyHandler) newCopyResponse(c models.BookCopy) copyResponse {
	return copyResponse{BookCopy: c, IsOverdue: h.Manager.IsOverdue(c)}
}

func (h *BookCopyHandler) newCopyResponses(copies []models.BookCopy) []copyResponse {
	out := make([]copyResponse, 0, len(copies))
	for _, c := range copies {
		out = append(out, h.newCopyResponse(c))
	}
	return out
}

// HandleCreateCopy adds a copy of a book. New copies start in maintenance.
func (h *BookCopyHandler) HandleCreateCopy(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		BookID  *int64 `json:"book_id"`
		Imprint string `json:"imprint"`
	}
	if err := webutil.DecodeJSON(w, r, &req); err != nil {
		return err
	}

	c := models.BookCopy{
		BookID:  req.BookID,
		Imprint: strings.TrimSpace(req.Imprint),
		Status:  models.DefaultCopyStatus,
	}
	v := validator.New()
	v.Check(c.BookID != nil, "book_id", "must be provided")
	v.Check(validator.NotBlank(c.Imprint), "imprint", "must be provided")
	v.Check(validator.MaxChars(c.Imprint, maxImprintChars), "imprint", fmt.Sprintf("must not be more than %d characters", maxImprintChars))
	if err := v.Err(); err != nil {
		return err
	}

	if err := h.Repo.CreateBookCopy(r.Context(), &c); err != nil {
		return fmt.Errorf("failed to create book copy: %w", err)
	}
	created, err := h.Repo.GetBookCopyByID(r.Context(), c.ID)
	if err != nil {
		return fmt.Errorf("failed to reload book copy %s: %w", c.ID, err)
	}
	webutil.RespondWithJSON(w, http.StatusCreated, h.newCopyResponse(*created))
	return nil
}

func (h *BookCopyHandler) HandleGetCopy(w http.ResponseWriter, r *http.Request) error {
	copyID, err := webutil.ParseUUIDParam(r, paramID)
	if err != nil {
		return err
	}
	c, err := h.Repo.GetBookCopyByID(r.Context(), copyID)
	if err != nil {
		return fmt.Errorf("failed to retrieve book copy %s: %w", copyID, err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, h.newCopyResponse(*c))
	return nil
}

// HandleDeleteCopy removes a copy record. Loan history is not kept.
func (h *BookCopyHandler) HandleDeleteCopy(w http.ResponseWriter, r *http.Request) error {
	copyID, err := webutil.ParseUUIDParam(r, paramID)
	if err != nil {
		return err
	}
	if err := h.Repo.DeleteBookCopy(r.Context(), copyID); err != nil {
		return fmt.Errorf("failed to delete book copy %s: %w", copyID, err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// HandleGetMyCopies lists the copies on loan to the current user.
func (h *BookCopyHandler) HandleGetMyCopies(w http.ResponseWriter, r *http.Request) error {
	page := webutil.ReadPage(r)
	copies, metadata, err := h.Manager.ListOnLoanFor(r.Context(), auth.ActorFromContext(r.Context()), page)
	if err != nil {
		return fmt.Errorf("failed to list own loans: %w", err)
	}
	webutil.RespondWithList(w, h.newCopyResponses(copies), metadata)
	return nil
}

// HandleGetOnLoanCopies lists every copy on loan.
func (h *BookCopyHandler) HandleGetOnLoanCopies(w http.ResponseWriter, r *http.Request) error {
	page := webutil.ReadPage(r)
	copies, metadata, err := h.Manager.ListAllOnLoan(r.Context(), auth.ActorFromContext(r.Context()), page)
	if err != nil {
		return fmt.Errorf("failed to list loans: %w", err)
	}
	webutil.RespondWithList(w, h.newCopyResponses(copies), metadata)
	return nil
}

// HandleGetRenewal returns the copy and the default renewal date to offer.
func (h *BookCopyHandler) HandleGetRenewal(w http.ResponseWriter, r *http.Request) error {
	copyID, err := webutil.ParseUUIDParam(r, paramID)
	if err != nil {
		return err
	}
	c, proposed, err := h.Manager.ProposeRenewal(r.Context(), copyID, auth.ActorFromContext(r.Context()))
	if err != nil {
		return fmt.Errorf("failed to propose renewal of copy %s: %w", copyID, err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, renewalProposalResponse{
		Copy:            h.newCopyResponse(*c),
		ProposedDueBack: proposed,
	})
	return nil
}

func (h *BookCopyHandler) HandleRenewCopy(w http.ResponseWriter, r *http.Request) error {
	copyID, err := webutil.ParseUUIDParam(r, paramID)
	if err != nil {
		return err
	}

	var req struct {
		DueBack *string `json:"due_back"`
	}
	if err := webutil.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	if req.DueBack == nil {
		return models.NewValidationError(dueBackField, "must be provided")
	}
	dueBack, err := parseDueBack(req.DueBack)
	if err != nil {
		return err
	}

	c, err := h.Manager.Renew(r.Context(), copyID, *dueBack, auth.ActorFromContext(r.Context()))
	if err != nil {
		return fmt.Errorf("failed to renew copy %s: %w", copyID, err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, h.newCopyResponse(*c))
	return nil
}

// HandleReserveCopy holds the copy. Without a borrower_id the hold is for
// the current user.
func (h *BookCopyHandler) HandleReserveCopy(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		BorrowerID string `json:"borrower_id"`
	}
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		return err
	}
	return h.transition(w, r, "reserve", func(ctx context.Context, copyID string, actor *auth.Actor) (*models.BookCopy, error) {
		return h.Manager.Reserve(ctx, copyID, req.BorrowerID, actor)
	})
}

func (h *BookCopyHandler) HandleCancelReservation(w http.ResponseWriter, r *http.Request) error {
	return h.transition(w, r, "cancel reservation of", h.Manager.CancelReservation)
}

// HandleCheckoutCopy lends the copy. due_back defaults to three weeks out.
func (h *BookCopyHandler) HandleCheckoutCopy(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		BorrowerID string  `json:"borrower_id"`
		DueBack    *string `json:"due_back"`
	}
	if err := webutil.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	dueBack, err := parseDueBack(req.DueBack)
	if err != nil {
		return err
	}
	return h.transition(w, r, "check out", func(ctx context.Context, copyID string, actor *auth.Actor) (*models.BookCopy, error) {
		return h.Manager.Checkout(ctx, copyID, req.BorrowerID, dueBack, actor)
	})
}

// parseDueBack reads an optional YYYY-MM-DD date so a bad value is reported
// against the due_back field instead of as an unreadable body.
func parseDueBack(raw *string) (*models.Date, error) {
	if raw == nil {
		return nil, nil
	}
	d, err := models.ParseDate(strings.TrimSpace(*raw))
	if err != nil {
		return nil, models.NewValidationError(dueBackField, "must be a date in YYYY-MM-DD format")
	}
	return &d, nil
}

func (h *BookCopyHandler) HandleReturnCopy(w http.ResponseWriter, r *http.Request) error {
	return h.transition(w, r, "return", h.Manager.Return)
}

func (h *BookCopyHandler) HandleSendToMaintenance(w http.ResponseWriter, r *http.Request) error {
	return h.transition(w, r, "send to maintenance", h.Manager.SendToMaintenance)
}

func (h *BookCopyHandler) HandleReleaseFromMaintenance(w http.ResponseWriter, r *http.Request) error {
	return h.transition(w, r, "release from maintenance", h.Manager.ReleaseFromMaintenance)
}

type transitionFunc func(ctx context.Context, copyID string, actor *auth.Actor) (*models.BookCopy, error)

func (h *BookCopyHandler) transition(w http.ResponseWriter, r *http.Request, verb string, apply transitionFunc) error {
	copyID, err := webutil.ParseUUIDParam(r, paramID)
	if err != nil {
		return err
	}
	c, err := apply(r.Context(), copyID, auth.ActorFromContext(r.Context()))
	if err != nil {
		return fmt.Errorf("failed to %s copy %s: %w", verb, copyID, err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, h.newCopyResponse(*c))
	return nil
}

// decodeOptionalJSON decodes the body only when the client sent one.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return nil
	}
	return webutil.DecodeJSON(w, r, dst)
}
