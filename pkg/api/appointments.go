package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"unlockdesk/pkg/models"
	"unlockdesk/pkg/upload"
)

func appointmentPath(id int64, suffix string) string {
	if suffix == "" {
		return fmt.Sprintf("/appointments/%d/", id)
	}
	return fmt.Sprintf("/appointments/%d/%s/", id, suffix)
}

// CreateAppointment creates an appointment, attaching the lock-screen
// photo when provided. The photo is validated client-side first.
func (c *Client) CreateAppointment(ctx context.Context, in models.CreateAppointment) (models.Appointment, error) {
	var out models.Appointment
	files := map[string]string{}
	if in.PhotoPath != "" {
		if err := upload.ValidateLimit(in.PhotoPath, upload.LockScreenPhoto, c.maxUpload); err != nil {
			return out, err
		}
		files["photo_lock_screen"] = in.PhotoPath
	}
	fields := map[string]string{
		"brand":       in.Brand,
		"model":       in.Model,
		"lock_type":   string(in.LockType),
		"has_pc":      strconv.FormatBool(in.HasPC),
		"description": in.Description,
	}
	p, err := multipartPayload(fields, files)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, http.MethodPost, "/appointments/", nil, p, &out, nil)
	return out, err
}

// MyAppointments lists the client's own appointments.
func (c *Client) MyAppointments(ctx context.Context) ([]models.Appointment, error) {
	var out []models.Appointment
	err := c.do(ctx, http.MethodGet, "/appointments/my/", nil, nil, &out, nil)
	return out, err
}

// NewAppointments lists unassigned appointments visible to masters.
func (c *Client) NewAppointments(ctx context.Context) ([]models.Appointment, error) {
	var out []models.Appointment
	err := c.do(ctx, http.MethodGet, "/appointments/new/", nil, nil, &out, nil)
	return out, err
}

// ActiveAppointments lists the master's in-flight appointments.
func (c *Client) ActiveAppointments(ctx context.Context) ([]models.Appointment, error) {
	var out []models.Appointment
	err := c.do(ctx, http.MethodGet, "/appointments/active/", nil, nil, &out, nil)
	return out, err
}

// Appointment fetches one appointment.
func (c *Client) Appointment(ctx context.Context, id int64) (models.Appointment, error) {
	var out models.Appointment
	err := c.do(ctx, http.MethodGet, appointmentPath(id, ""), nil, nil, &out, nil)
	return out, err
}

// AppointmentEvents fetches the event feed. afterID > 0 requests only
// events beyond that id (incremental poll).
func (c *Client) AppointmentEvents(ctx context.Context, id, afterID int64) ([]models.Event, error) {
	var q url.Values
	if afterID > 0 {
		q = url.Values{"after_id": {strconv.FormatInt(afterID, 10)}}
	}
	var out []models.Event
	err := c.do(ctx, http.MethodGet, appointmentPath(id, "events"), q, nil, &out, nil)
	return out, err
}

// Take assigns the appointment to the calling master.
func (c *Client) Take(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, appointmentPath(id, "take"), nil, nil, nil, nil)
}

// Decline declines the appointment.
func (c *Client) Decline(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, appointmentPath(id, "decline"), nil, nil, nil, nil)
}

// SetPrice sets the total price (master).
func (c *Client) SetPrice(ctx context.Context, id, totalPrice int64) error {
	p, err := jsonPayload(map[string]int64{"total_price": totalPrice})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, appointmentPath(id, "set-price"), nil, p, nil, nil)
}

// UploadPaymentProof attaches the client's payment receipt.
func (c *Client) UploadPaymentProof(ctx context.Context, id int64, path string) error {
	if err := upload.ValidateLimit(path, upload.PaymentProof, c.maxUpload); err != nil {
		return err
	}
	p, err := multipartPayload(nil, map[string]string{"payment_proof": path})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, appointmentPath(id, "upload-payment-proof"), nil, p, nil, nil)
}

// MarkPaid records the client's chosen payment method.
func (c *Client) MarkPaid(ctx context.Context, id int64, method models.PaymentMethod) error {
	p, err := jsonPayload(map[string]string{"payment_method": string(method)})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, appointmentPath(id, "mark-paid"), nil, p, nil, nil)
}

// ConfirmPayment confirms the payment (master).
func (c *Client) ConfirmPayment(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, appointmentPath(id, "confirm-payment"), nil, nil, nil, nil)
}

// StartWork marks work started.
func (c *Client) StartWork(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, appointmentPath(id, "start"), nil, nil, nil, nil)
}

// CompleteWork marks work completed.
func (c *Client) CompleteWork(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, appointmentPath(id, "complete"), nil, nil, nil, nil)
}

// Repeat clones a finished appointment into a fresh one.
func (c *Client) Repeat(ctx context.Context, id int64) (models.Appointment, error) {
	var out models.Appointment
	err := c.do(ctx, http.MethodPost, appointmentPath(id, "repeat"), nil, nil, &out, nil)
	return out, err
}

// ClientSignal notifies the master about the client's readiness or a
// request for help. The backend records it as a client_signal event.
func (c *Client) ClientSignal(ctx context.Context, id int64, signal, comment string) error {
	p, err := jsonPayload(map[string]string{"signal": signal, "comment": comment})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, appointmentPath(id, "signal"), nil, p, nil, nil)
}

// ReviewMaster submits the client's review of the master.
func (c *Client) ReviewMaster(ctx context.Context, id int64, review models.Review) error {
	p, err := jsonPayload(review)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, appointmentPath(id, "review-master"), nil, p, nil, nil)
}

// ReviewClient submits the master's review of the client.
func (c *Client) ReviewClient(ctx context.Context, id int64, review models.Review) error {
	p, err := jsonPayload(review)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, appointmentPath(id, "review-client"), nil, p, nil, nil)
}
