package devserver

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/washlink/app/internal/api"
	"github.com/washlink/app/internal/auth"
	"golang.org/x/crypto/bcrypt"
)

const otpTTL = 5 * time.Minute

// requestOTP issues a one-time code for the given phone. There is no SMS
// gateway here, so the code comes back in the response body; the production
// API does the same in its dev mode.
func (s *Server) requestOTP(w http.ResponseWriter, r *http.Request) {
	var req api.OTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	phone := strings.TrimSpace(req.PhoneNumber)
	if !api.ValidPhone(phone) {
		writeDetail(w, http.StatusBadRequest, "Invalid phone number")
		return
	}

	code, err := generateCode()
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Failed to send OTP")
		return
	}

	// Codes are stored hashed, same as any other login secret.
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Failed to send OTP")
		return
	}

	s.mu.Lock()
	s.otps[phone] = otpRecord{hash: hash, expiresAt: time.Now().Add(otpTTL)}
	s.mu.Unlock()

	s.log.WithField("phone", phone).Info("issued OTP")
	writeJSON(w, http.StatusOK, api.OTPResponse{OTP: code})
}

// verifyOTP validates phone + code and returns a bearer token. A phone the
// server has never seen must also carry a full name; the client recognizes
// the rejection text and branches to its name-completion step.
func (s *Server) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	phone := strings.TrimSpace(req.PhoneNumber)

	s.mu.Lock()
	rec, ok := s.otps[phone]
	s.mu.Unlock()
	if !ok || time.Now().After(rec.expiresAt) {
		writeDetail(w, http.StatusBadRequest, "Invalid OTP")
		return
	}
	if err := bcrypt.CompareHashAndPassword(rec.hash, []byte(req.OTPCode)); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid OTP")
		return
	}

	s.mu.Lock()
	user, exists := s.usersByPhone[phone]
	if !exists {
		name := strings.TrimSpace(req.FullName)
		if len(name) < 2 {
			s.mu.Unlock()
			writeDetail(w, http.StatusBadRequest, "Full name is required to complete registration")
			return
		}
		user = api.User{
			ID:       uuid.NewString(),
			Phone:    phone,
			FullName: name,
			Role:     api.RoleCustomer,
			IsActive: true,
		}
		s.usersByPhone[phone] = user
	}
	delete(s.otps, phone) // single use
	s.mu.Unlock()

	userID, err := uuid.Parse(user.ID)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	token, err := auth.GenerateToken(s.jwtSecret, userID, user.Phone, user.Role)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, api.AuthResponse{
		Message:     "Login successful",
		User:        user,
		AccessToken: token,
	})
}

// logout revokes the presented token. Tokens are short-lived, so the revoked
// set is left to grow for the life of the process.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	token := tokenFromContext(r.Context())

	s.mu.Lock()
	s.revoked[token] = struct{}{}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Logged out successfully"})
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
