package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mansionapp/mansion-server/internal/media/uploads"
	"github.com/mansionapp/mansion-server/internal/service"
	"github.com/mansionapp/mansion-server/internal/store"
)

// multipartMemoryLimit is how much of a multipart body is buffered in
// memory before spilling to temp files.
const multipartMemoryLimit = 32 << 20

type loginPage struct {
	page
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	// Already logged in? Straight to the dashboard.
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if _, err := s.sessionService.Authenticate(r.Context(), cookie.Value); err == nil {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
	}

	data := loginPage{page: s.basePage(r)}
	data.Flash = s.popFlash(w, r)
	s.render(w, r, http.StatusOK, "admin_login", data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.setFlash(w, "error", "Invalid form submission")
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	cookieValue, err := s.sessionService.Login(r.Context(), username, password, r.RemoteAddr)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			s.setFlash(w, "error", "Invalid username or password")
		} else {
			s.logger.ErrorContext(r.Context(), "login failed", "error", err)
			s.setFlash(w, "error", "Login failed, try again")
		}
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	s.setSessionCookie(w, cookieValue, int(s.sessionDuration.Seconds()))
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := s.sessionService.Logout(r.Context(), cookie.Value); err != nil {
			s.logger.ErrorContext(r.Context(), "logout failed", "error", err)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

type dashboardPage struct {
	page
	Dashboard *service.DashboardView
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := s.profileService.Dashboard(r.Context())
	if err != nil {
		s.handleStoreError(w, r, err)
		return
	}

	data := dashboardPage{page: s.basePage(r), Dashboard: view}
	data.Flash = s.popFlash(w, r)
	s.render(w, r, http.StatusOK, "admin_dashboard", data)
}

type profileFormPage struct {
	page
	Form   *service.EditView
	Action string
}

func (s *Server) handleNewProfilePage(w http.ResponseWriter, r *http.Request) {
	view, err := s.profileService.NewProfileView(r.Context())
	if err != nil {
		s.handleStoreError(w, r, err)
		return
	}

	data := profileFormPage{page: s.basePage(r), Form: view, Action: "/admin/profile/new"}
	data.Flash = s.popFlash(w, r)
	s.render(w, r, http.StatusOK, "admin_profile_form", data)
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	s.saveProfile(w, r, 0)
}

func (s *Server) handleEditProfilePage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.profileIDParam(w, r)
	if !ok {
		return
	}

	view, err := s.profileService.EditProfileView(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.setFlash(w, "error", "Profile not found")
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
		s.handleStoreError(w, r, err)
		return
	}

	action := fmt.Sprintf("/admin/profile/%d/edit", id)
	data := profileFormPage{page: s.basePage(r), Form: view, Action: action}
	data.Flash = s.popFlash(w, r)
	s.render(w, r, http.StatusOK, "admin_profile_form", data)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := s.profileIDParam(w, r)
	if !ok {
		return
	}
	s.saveProfile(w, r, id)
}

// profileIDParam parses the {id} route parameter, redirecting to the
// dashboard on garbage.
func (s *Server) profileIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.setFlash(w, "error", "Profile not found")
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return 0, false
	}
	return id, true
}

// saveProfile handles both the create and edit form submissions. id zero
// means create.
func (s *Server) saveProfile(w http.ResponseWriter, r *http.Request, id int64) {
	backTo := "/admin/profile/new"
	if id != 0 {
		backTo = fmt.Sprintf("/admin/profile/%d/edit", id)
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.setFlash(w, "error", "Upload too large")
		} else {
			s.setFlash(w, "error", "Invalid form submission")
		}
		http.Redirect(w, r, backTo, http.StatusSeeOther)
		return
	}
	defer r.MultipartForm.RemoveAll()

	input := service.SaveProfileInput{
		ID:          id,
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		Featured:    r.PostFormValue("featured") != "",
		CategoryIDs: parseCategoryIDs(r.PostForm["categories"]),
	}

	files, closeFiles, err := openUploadFiles(r.MultipartForm.File["files"])
	if err != nil {
		s.logger.ErrorContext(r.Context(), "multipart file open failed", "error", err)
		s.setFlash(w, "error", "Could not read uploaded files")
		http.Redirect(w, r, backTo, http.StatusSeeOther)
		return
	}
	defer closeFiles()
	input.Files = files

	profile, result, err := s.profileService.Save(r.Context(), input)
	if err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.HTTPCode() < 500 {
			s.setFlash(w, "error", storeErr.Message)
		} else {
			s.logger.ErrorContext(r.Context(), "profile save failed", "profile_id", id, "error", err)
			s.setFlash(w, "error", "Failed to save profile")
		}
		http.Redirect(w, r, backTo, http.StatusSeeOther)
		return
	}

	message := fmt.Sprintf("Profile %q saved", profile.Name)
	if result != nil && result.Skipped > 0 {
		message = fmt.Sprintf("Profile %q saved, %d file(s) rejected", profile.Name, result.Skipped)
	}
	s.setFlash(w, "success", message)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// parseCategoryIDs converts the checkbox values to ids, dropping garbage.
func parseCategoryIDs(values []string) []int64 {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// openUploadFiles opens every submitted file part. The returned cleanup
// closes them all; empty parts (no filename) are skipped.
func openUploadFiles(headers []*multipart.FileHeader) ([]uploads.File, func(), error) {
	files := make([]uploads.File, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, header := range headers {
		if header.Filename == "" || header.Size == 0 {
			continue
		}
		f, err := header.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		files = append(files, uploads.File{Name: header.Filename, Content: f})
	}

	return files, closeAll, nil
}
