package api

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/omarsldn/taskhub/internal/api/shared"
	"github.com/omarsldn/taskhub/internal/domain"
	"github.com/omarsldn/taskhub/internal/platform/logger"
	"github.com/omarsldn/taskhub/internal/service/auth"
	"github.com/omarsldn/taskhub/internal/service/avatar"
	"github.com/omarsldn/taskhub/internal/store"
)

// avatarFormField is the multipart form field carrying the upload.
const avatarFormField = "avatar"

// UserHandler handles account, session and avatar endpoints.
type UserHandler struct {
	userStore    store.UserStore
	taskStore    store.TaskStore
	tokenStore   store.TokenStore
	outboxStore  store.OutboxStore
	tokenService auth.TokenService
	hasher       auth.PasswordHasher
	verifier     auth.PasswordVerifier
	processor    *avatar.Processor
	logger       *slog.Logger

	// runTx executes fn inside a database transaction. Split out as a field
	// so tests can run the same flow against in-memory stores.
	runTx func(ctx context.Context, fn store.TxFn) error
}

// NewUserHandler creates a UserHandler backed by the given database and
// stores.
func NewUserHandler(
	db *sql.DB,
	userStore store.UserStore,
	taskStore store.TaskStore,
	tokenStore store.TokenStore,
	outboxStore store.OutboxStore,
	tokenService auth.TokenService,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	processor *avatar.Processor,
	log *slog.Logger,
) *UserHandler {
	return &UserHandler{
		userStore:    userStore,
		taskStore:    taskStore,
		tokenStore:   tokenStore,
		outboxStore:  outboxStore,
		tokenService: tokenService,
		hasher:       hasher,
		verifier:     verifier,
		processor:    processor,
		logger:       log.With(slog.String("component", "user_handler")),
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
	}
}

// Signup handles POST /users. It creates the account, issues the first
// session token, and enqueues the welcome email, all in one transaction.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SignupRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := domain.NewUser(req.Name, req.Email, req.Password, req.Age)
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	hashed, err := h.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}
	user.HashedPassword = hashed
	user.Password = ""

	token, err := h.tokenService.Generate(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to generate token", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	err = h.runTx(r.Context(), func(ctx context.Context, tx *sql.Tx) error {
		if err := h.userStore.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		if err := h.tokenStore.WithTx(tx).Add(ctx, user.ID, token); err != nil {
			return err
		}
		welcome := domain.NewOutboxEmail(domain.EmailKindWelcome, user.Email, user.Name)
		return h.outboxStore.WithTx(tx).Enqueue(ctx, welcome)
	})
	if err != nil {
		if !errors.Is(err, store.ErrEmailExists) {
			log.Error("failed to create user", slog.String("error", err.Error()))
		}
		respondWithMappedError(w, err)
		return
	}

	log.Info("user created", slog.String("user_id", user.ID.String()))
	respondWithJSON(w, http.StatusCreated, AuthResponse{
		User:  NewUserResponse(user),
		Token: token,
	})
}

// Login handles POST /users/login. Every failure mode responds 401 with the
// same message so the endpoint does not reveal whether the email exists.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	probe := &domain.User{Email: req.Email}
	probe.Normalize()

	user, err := h.userStore.GetByEmail(r.Context(), probe.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondWithMappedError(w, auth.ErrInvalidCredentials)
			return
		}
		log.Error("failed to look up user", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	if err := h.verifier.Compare(user.HashedPassword, req.Password); err != nil {
		respondWithMappedError(w, auth.ErrInvalidCredentials)
		return
	}

	token, err := h.tokenService.Generate(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to generate token", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	if err := h.tokenStore.Add(r.Context(), user.ID, token); err != nil {
		log.Error("failed to store token", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	respondWithJSON(w, http.StatusOK, AuthResponse{
		User:  NewUserResponse(user),
		Token: token,
	})
}

// Logout handles POST /users/logout. It revokes the exact token the request
// authenticated with; other sessions stay valid.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromRequest(r)
	if !ok {
		respondWithMappedError(w, auth.ErrMissingToken)
		return
	}
	token, ok := shared.TokenFromContext(r.Context())
	if !ok {
		respondWithMappedError(w, auth.ErrMissingToken)
		return
	}

	if err := h.tokenStore.Remove(r.Context(), user.ID, token); err != nil {
		respondWithMappedError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "logged out"})
}

// LogoutAll handles POST /users/logoutAll, revoking every session token the
// user holds.
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := userFromRequest(r)
	if !ok {
		respondWithMappedError(w, auth.ErrMissingToken)
		return
	}

	if err := h.tokenStore.RemoveAll(r.Context(), user.ID); err != nil {
		log.Error("failed to revoke tokens",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to logout")
		return
	}

	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "logged out everywhere"})
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromRequest(r)
	if !ok {
		respondWithMappedError(w, auth.ErrMissingToken)
		return
	}
	respondWithJSON(w, http.StatusOK, NewUserResponse(user))
}

// UpdateMe handles PATCH /users/me. Only name, email, password and age are
// updatable; any other field in the body fails the request before any write.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := userFromRequest(r)
	if !ok {
		respondWithMappedError(w, auth.ErrMissingToken)
		return
	}

	var req UpdateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid updates")
		return
	}
	if req.IsEmpty() {
		respondWithError(w, http.StatusBadRequest, "Invalid updates")
		return
	}

	// Work on a copy so a failed validation leaves the context user intact.
	updated := *user
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.Email != nil {
		updated.Email = *req.Email
	}
	if req.Age != nil {
		updated.Age = *req.Age
	}
	if req.Password != nil {
		updated.Password = *req.Password
	}
	updated.Normalize()
	updated.UpdatedAt = time.Now().UTC()

	if err := updated.Validate(); err != nil {
		respondWithMappedError(w, err)
		return
	}

	if req.Password != nil {
		hashed, err := h.hasher.Hash(updated.Password)
		if err != nil {
			log.Error("failed to hash password", slog.String("error", err.Error()))
			respondWithError(w, http.StatusInternalServerError, "Failed to update account")
			return
		}
		updated.HashedPassword = hashed
		updated.Password = ""
	}

	if err := h.userStore.Update(r.Context(), &updated); err != nil {
		if !errors.Is(err, store.ErrEmailExists) && !errors.Is(err, store.ErrUserNotFound) {
			log.Error("failed to update user", slog.String("error", err.Error()))
		}
		respondWithMappedError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, NewUserResponse(&updated))
}

// DeleteMe handles DELETE /users/me. The user's tasks and tokens are removed
// in the same transaction as the account, and the cancellation email is
// enqueued before the row disappears.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := userFromRequest(r)
	if !ok {
		respondWithMappedError(w, auth.ErrMissingToken)
		return
	}

	err := h.runTx(r.Context(), func(ctx context.Context, tx *sql.Tx) error {
		if _, err := h.taskStore.WithTx(tx).DeleteByOwner(ctx, user.ID); err != nil {
			return err
		}
		if err := h.tokenStore.WithTx(tx).RemoveAll(ctx, user.ID); err != nil {
			return err
		}
		goodbye := domain.NewOutboxEmail(domain.EmailKindCancellation, user.Email, user.Name)
		if err := h.outboxStore.WithTx(tx).Enqueue(ctx, goodbye); err != nil {
			return err
		}
		return h.userStore.WithTx(tx).Delete(ctx, user.ID)
	})
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("failed to delete user",
				slog.String("error", err.Error()),
				slog.String("user_id", user.ID.String()))
		}
		respondWithMappedError(w, err)
		return
	}

	log.Info("user deleted", slog.String("user_id", user.ID.String()))
	respondWithJSON(w, http.StatusOK, NewUserResponse(user))
}

// UploadAvatar handles POST /users/me/avatar. The upload is normalized to a
// 300x290 PNG before storage, regardless of input format or size.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := userFromRequest(r)
	if !ok {
		respondWithMappedError(w, auth.ErrMissingToken)
		return
	}

	// Cap memory use while parsing; anything over the limit spools to disk
	// and is rejected by the size check below.
	if err := r.ParseMultipartForm(avatar.MaxUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile(avatarFormField)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing avatar file")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Warn("failed to close upload", slog.String("error", closeErr.Error()))
		}
	}()

	if header.Size > avatar.MaxUploadBytes {
		respondWithMappedError(w, avatar.ErrTooLarge)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, avatar.MaxUploadBytes+1))
	if err != nil {
		log.Error("failed to read upload", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to read upload")
		return
	}
	if len(data) > avatar.MaxUploadBytes {
		respondWithMappedError(w, avatar.ErrTooLarge)
		return
	}

	normalized, err := h.processor.Process(header.Filename, data)
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	if err := h.userStore.UpdateAvatar(r.Context(), user.ID, normalized); err != nil {
		log.Error("failed to store avatar", slog.String("error", err.Error()))
		respondWithMappedError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DeleteAvatar handles DELETE /users/me/avatar. Deleting an absent avatar is
// not an error.
func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := userFromRequest(r)
	if !ok {
		respondWithMappedError(w, auth.ErrMissingToken)
		return
	}

	if err := h.userStore.UpdateAvatar(r.Context(), user.ID, nil); err != nil {
		log.Error("failed to clear avatar", slog.String("error", err.Error()))
		respondWithMappedError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetAvatar handles GET /users/{id}/avatar. The route is public: avatars are
// served to anyone holding the user's ID.
func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	data, err := h.userStore.GetAvatar(r.Context(), id)
	if err != nil {
		// Both a missing user and a missing avatar read as 404 here.
		respondWithMappedError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).
			Warn("failed to write avatar response", slog.String("error", err.Error()))
	}
}
