package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"unlockdesk/pkg/models"
)

// AdminAppointments lists appointments with optional filtering.
func (c *Client) AdminAppointments(ctx context.Context, filter models.AdminAppointmentFilter) ([]models.Appointment, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Master > 0 {
		q.Set("master", strconv.FormatInt(filter.Master, 10))
	}
	if filter.Client > 0 {
		q.Set("client", strconv.FormatInt(filter.Client, 10))
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if len(q) == 0 {
		q = nil
	}
	var out []models.Appointment
	err := c.do(ctx, http.MethodGet, "/admin/appointments/", q, nil, &out, nil)
	return out, err
}

// AdminConfirmPayment confirms a payment on behalf of a master.
func (c *Client) AdminConfirmPayment(ctx context.Context, appointmentID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/appointments/%d/confirm-payment/", appointmentID), nil, nil, nil, nil)
}

// AdminSetStatus manually overrides an appointment status.
func (c *Client) AdminSetStatus(ctx context.Context, appointmentID int64, set models.SetStatus) error {
	p, err := jsonPayload(set)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/appointments/%d/set-status/", appointmentID), nil, p, nil, nil)
}

// AdminClients lists client accounts.
func (c *Client) AdminClients(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := c.do(ctx, http.MethodGet, "/admin/users/", nil, nil, &out, nil)
	return out, err
}

// AdminUsers lists all accounts, optionally filtered by a search term.
func (c *Client) AdminUsers(ctx context.Context, search string) ([]models.User, error) {
	var q url.Values
	if search != "" {
		q = url.Values{"search": {search}}
	}
	var out []models.User
	err := c.do(ctx, http.MethodGet, "/admin/users/all/", q, nil, &out, nil)
	return out, err
}

// AdminBanUser bans a user with a reason.
func (c *Client) AdminBanUser(ctx context.Context, userID int64, reason string) error {
	p, err := jsonPayload(map[string]string{"reason": reason})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/users/%d/ban/", userID), nil, p, nil, nil)
}

// AdminUnbanUser lifts a ban.
func (c *Client) AdminUnbanUser(ctx context.Context, userID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/users/%d/unban/", userID), nil, nil, nil, nil)
}

// AdminSetUserRole changes a user's role.
func (c *Client) AdminSetUserRole(ctx context.Context, userID int64, role string) error {
	p, err := jsonPayload(map[string]string{"role": role})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/users/%d/role/", userID), nil, p, nil, nil)
}

// AdminMasters lists master accounts.
func (c *Client) AdminMasters(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := c.do(ctx, http.MethodGet, "/admin/masters/", nil, nil, &out, nil)
	return out, err
}

// AdminActivateMaster enables a master for new appointments.
func (c *Client) AdminActivateMaster(ctx context.Context, userID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/masters/%d/activate/", userID), nil, nil, nil, nil)
}

// AdminSuspendMaster suspends a master.
func (c *Client) AdminSuspendMaster(ctx context.Context, userID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/masters/%d/suspend/", userID), nil, nil, nil, nil)
}

// AdminSystemStatus returns platform health, SLA config and metrics.
func (c *Client) AdminSystemStatus(ctx context.Context) (models.SystemStatus, error) {
	var out models.SystemStatus
	err := c.do(ctx, http.MethodGet, "/admin/system/status/", nil, nil, &out, nil)
	return out, err
}

// AdminSystemSettings returns the editable platform settings.
func (c *Client) AdminSystemSettings(ctx context.Context) (models.SystemSettings, error) {
	var out models.SystemSettings
	err := c.do(ctx, http.MethodGet, "/admin/system/settings/", nil, nil, &out, nil)
	return out, err
}

// AdminUpdateSystemSettings replaces the platform settings.
func (c *Client) AdminUpdateSystemSettings(ctx context.Context, settings models.SystemSettings) error {
	p, err := jsonPayload(settings)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, "/admin/system/settings/", nil, p, nil, nil)
}

// AdminRunSystemAction triggers a named maintenance action.
func (c *Client) AdminRunSystemAction(ctx context.Context, action string) error {
	p, err := jsonPayload(map[string]string{"action": action})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/admin/system/run-action/", nil, p, nil, nil)
}

// AdminRules lists automation rules.
func (c *Client) AdminRules(ctx context.Context) ([]models.AutomationRule, error) {
	var out []models.AutomationRule
	err := c.do(ctx, http.MethodGet, "/v1/admin/rules/", nil, nil, &out, nil)
	return out, err
}

// AdminCreateRule creates an automation rule.
func (c *Client) AdminCreateRule(ctx context.Context, rule models.AutomationRule) (models.AutomationRule, error) {
	var out models.AutomationRule
	p, err := jsonPayload(rule)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, http.MethodPost, "/v1/admin/rules/", nil, p, &out, nil)
	return out, err
}

// AdminUpdateRule updates an automation rule.
func (c *Client) AdminUpdateRule(ctx context.Context, id int64, rule models.AutomationRule) (models.AutomationRule, error) {
	var out models.AutomationRule
	p, err := jsonPayload(rule)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, http.MethodPut, fmt.Sprintf("/v1/admin/rules/%d/", id), nil, p, &out, nil)
	return out, err
}

// AdminDeleteRule removes an automation rule.
func (c *Client) AdminDeleteRule(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/admin/rules/%d/", id), nil, nil, nil, nil)
}
