package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/idorlab/internal/model"
)

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	// GetProfile は認可とフィルタを経たプロフィールを返す。
	GetProfile(ctx context.Context, requestedID int64, credential string) (*model.ProfileView, error)
	// ListDirectory は機密フィールドを含まないユーザー一覧を返す。
	ListDirectory(ctx context.Context) []model.DirectoryEntry
	// DumpAll はフィルタなしの全レコードを返す。
	DumpAll(ctx context.Context) []model.User
}

// ProfileHandler はプロフィール参照とユーザー一覧のHTTPハンドラー。
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// directoryResponse はユーザー一覧のAPIレスポンス。
type directoryResponse struct {
	Users []model.DirectoryEntry `json:"users"`
	Count int                    `json:"count"`
}

// dumpResponse はデバッグダンプのAPIレスポンス。
type dumpResponse struct {
	Users []model.User `json:"users"`
	Count int          `json:"count"`
}

// GetProfile はプロフィール参照を処理する。
// GET /api/profile/{id}?token=...
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		handleServiceError(w, r, model.NewInvalidIDError(rawID))
		return
	}

	view, err := h.service.GetProfile(r.Context(), id, r.URL.Query().Get("token"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// ListUsers はユーザー一覧を処理する。認証は不要。
// GET /api/users
func (h *ProfileHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	entries := h.service.ListDirectory(r.Context())
	writeJSON(w, http.StatusOK, directoryResponse{
		Users: entries,
		Count: len(entries),
	})
}

// DumpUsers はストアの全レコードをフィルタなしで返す。
// 運用者が明示的に有効化した場合のみルーティングされる。
func (h *ProfileHandler) DumpUsers(w http.ResponseWriter, r *http.Request) {
	users := h.service.DumpAll(r.Context())
	writeJSON(w, http.StatusOK, dumpResponse{
		Users: users,
		Count: len(users),
	})
}
