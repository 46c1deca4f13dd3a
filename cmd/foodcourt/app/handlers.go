package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kvvPro/foodcourt/internal/model"
)

func userFromContext(ctx context.Context) *model.User {
	userInfo, _ := ctx.Value(userInfoKey).(*model.User)
	return userInfo
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		Sugar.Errorln("can't write response: ", err.Error())
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

// writeError maps business errors to client statuses; everything else is an
// infrastructure fault and stays a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrInvalidRequest),
		errors.Is(err, model.ErrItemUnavailable),
		errors.Is(err, model.ErrSignatureMismatch),
		errors.Is(err, model.ErrInsufficientPoints):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrLoginTaken):
		status = http.StatusConflict
	case errors.Is(err, model.ErrAccessDenied):
		status = http.StatusForbidden
	case errors.Is(err, model.ErrPaymentInit):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorResponse{Message: err.Error()})
}

func (srv *Server) PingHandle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	err := srv.Ping(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	io.WriteString(w, "OK!")
}

type registerRequest struct {
	Name     string `json:"name"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (srv *Server) RegisterHandle(w http.ResponseWriter, r *http.Request) {
	var request registerRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, err := srv.RegisterUser(r.Context(), request.Name, request.Login, request.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (srv *Server) AuthHandle(w http.ResponseWriter, r *http.Request) {
	var request loginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, err := srv.LoginUser(r.Context(), request.Login, request.Password)
	if err != nil {
		// do not leak whether the login exists
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrInvalidRequest) {
			http.Error(w, "wrong login or password", http.StatusUnauthorized)
			return
		}
		writeError(w, err)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

type placeOrderResponse struct {
	Order           *model.Order     `json:"order"`
	GatewayCheckout *GatewayCheckout `json:"razorpayDetails,omitempty"`
}

func (srv *Server) PutOrder(w http.ResponseWriter, r *http.Request) {
	userInfo := userFromContext(r.Context())

	var request PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	order, checkout, err := srv.PlaceOrder(r.Context(), userInfo, &request)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, placeOrderResponse{
		Order:           order,
		GatewayCheckout: checkout,
	})
}

func (srv *Server) GetOrders(w http.ResponseWriter, r *http.Request) {
	userInfo := userFromContext(r.Context())

	orders, err := srv.OrderList(r.Context(), userInfo)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

func (srv *Server) GetOrderHandle(w http.ResponseWriter, r *http.Request) {
	userInfo := userFromContext(r.Context())
	orderID := chi.URLParam(r, "id")

	order, err := srv.OrderForUser(r.Context(), orderID, userInfo)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

type verifyPaymentRequest struct {
	GatewayOrderID string `json:"orderId"`
	PaymentID      string `json:"paymentId"`
	Signature      string `json:"signature"`
}

func (srv *Server) VerifyPaymentHandle(w http.ResponseWriter, r *http.Request) {
	var request verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	order, err := srv.ConfirmPayment(r.Context(), request.GatewayOrderID, request.PaymentID, request.Signature)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

func (srv *Server) UpdateStatusHandle(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var request updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	order, err := srv.TransitionStatus(r.Context(), orderID, request.Status, request.Note)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

type updateLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (srv *Server) UpdateLocationHandle(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var request updateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if request.Latitude == nil || request.Longitude == nil {
		http.Error(w, "latitude and longitude are required", http.StatusBadRequest)
		return
	}

	order, err := srv.UpdateLocation(r.Context(), orderID, *request.Latitude, *request.Longitude)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

type locationResponse struct {
	Location *model.Location `json:"location"`
	Status   string          `json:"status"`
	ETA      *time.Time      `json:"eta,omitempty"`
}

func (srv *Server) GetLocationHandle(w http.ResponseWriter, r *http.Request) {
	userInfo := userFromContext(r.Context())
	orderID := chi.URLParam(r, "id")

	order, err := srv.OrderForUser(r.Context(), orderID, userInfo)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, locationResponse{
		Location: order.CurrentLocation,
		Status:   order.Status,
		ETA:      order.EstimatedTime,
	})
}

func (srv *Server) RewardsInfoHandle(w http.ResponseWriter, r *http.Request) {
	userInfo := userFromContext(r.Context())

	info, err := srv.GetLoyaltyInfo(r.Context(), userInfo.Login)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

type benefitsResponse struct {
	CurrentTier string        `json:"currentTier"`
	Benefits    *TierBenefits `json:"benefits"`
}

func (srv *Server) RewardsBenefitsHandle(w http.ResponseWriter, r *http.Request) {
	userInfo := userFromContext(r.Context())

	tier, benefits, err := srv.GetTierBenefits(r.Context(), userInfo.Login)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, benefitsResponse{
		CurrentTier: tier,
		Benefits:    benefits,
	})
}

type redeemRequest struct {
	Points  int64  `json:"points"`
	OrderID string `json:"orderId"`
}

type redeemResponse struct {
	Message         string `json:"message"`
	RemainingPoints int64  `json:"remainingPoints"`
}

func (srv *Server) RedeemHandle(w http.ResponseWriter, r *http.Request) {
	userInfo := userFromContext(r.Context())

	var request redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := srv.RedeemPoints(r.Context(), userInfo.Login, request.Points, request.OrderID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, redeemResponse{
		Message:         "Points redeemed successfully",
		RemainingPoints: user.RewardPoints,
	})
}

func (srv *Server) NotificationsHandle(w http.ResponseWriter, r *http.Request) {
	userInfo := userFromContext(r.Context())

	notifications, err := srv.Notifications(r.Context(), userInfo.Login)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

func (srv *Server) AdminOrdersHandle(w http.ResponseWriter, r *http.Request) {
	orders, err := srv.AdminOrderList(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}
