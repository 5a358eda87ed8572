package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ffbot/internal/domain"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// maxErrorBody bounds how much of a rejected response is logged
const maxErrorBody = 1024

// Options configures the gateway
type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	IDCacheTTL time.Duration
	// HTTPClient overrides the default client; Timeout is ignored then.
	HTTPClient *http.Client
}

// Client implements repository.BudgetRepository over the backend REST API.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	timeout time.Duration
	ids     *idCache
	lookups singleflight.Group
	logger  *zap.Logger
}

// NewClient creates a gateway client
func NewClient(opts Options, logger *zap.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		http:    httpClient,
		timeout: opts.Timeout,
		ids:     newIDCache(opts.IDCacheTTL),
		logger:  logger,
	}
}

// request describes one REST call
type request struct {
	op     string // metrics label
	method string
	path   string
	query  url.Values
	body   any
	kind   Kind  // reported on rejection or malformed response
	expect []int // accepted statuses, 200 when empty
}

func (r request) accepts(status int) bool {
	if len(r.expect) == 0 {
		return status == http.StatusOK
	}
	for _, s := range r.expect {
		if s == status {
			return true
		}
	}
	return false
}

// do performs the call and decodes the response into out. When out is a
// *[]byte the raw body is returned.
func (c *Client) do(ctx context.Context, r request, out any) error {
	var payload io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return NewError(r.kind, errors.Wrap(err, "encode request"))
		}
		payload = bytes.NewReader(b)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, payload)
	if err != nil {
		return NewError(r.kind, errors.Wrap(err, "build request"))
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	requestDuration.WithLabelValues(r.op).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(r.op, "error").Inc()
		c.logger.Warn("Backend request failed",
			zap.String("operation", r.op),
			zap.Error(err),
		)
		return NewError(ServiceUnavailable, errors.Wrapf(err, "%s %s", r.method, r.path))
	}
	defer resp.Body.Close()
	requestsTotal.WithLabelValues(r.op, strconv.Itoa(resp.StatusCode)).Inc()

	if !r.accepts(resp.StatusCode) {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("Backend rejected request",
			zap.String("operation", r.op),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet),
		)
		e := NewError(r.kind, errors.Errorf("%s %s: unexpected status %d", r.method, r.path, resp.StatusCode))
		e.Status = resp.StatusCode
		return e
	}

	if out == nil {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw, err = io.ReadAll(resp.Body)
		if err != nil {
			return NewError(ServiceUnavailable, errors.Wrapf(err, "read %s %s", r.method, r.path))
		}
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewError(r.kind, errors.Wrapf(err, "decode %s %s", r.method, r.path))
	}
	return nil
}

// schemaError reports a response that decoded but misses required fields
func schemaError(kind Kind, format string, args ...any) *Error {
	return NewError(kind, errors.Errorf("unexpected response: "+format, args...))
}

// flexInt accepts both JSON numbers and numeric strings
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "parse integer %s", b)
	}
	*f = flexInt(n)
	return nil
}

func telegramQuery(telegramID int64) url.Values {
	return url.Values{"id_telegram": {strconv.FormatInt(telegramID, 10)}}
}

func userPath(userID int64, parts ...string) string {
	path := "/users/" + strconv.FormatInt(userID, 10) + "/"
	for _, p := range parts {
		path += p + "/"
	}
	return path
}

// ResolveID maps a Telegram ID to the backend user id. Results are cached
// for the configured TTL and concurrent lookups of one ID share a request.
// The shared request is detached from any single caller's cancellation.
func (c *Client) ResolveID(ctx context.Context, telegramID int64) (int64, error) {
	if id, ok := c.ids.get(telegramID); ok {
		idCacheLookups.WithLabelValues("hit").Inc()
		return id, nil
	}
	idCacheLookups.WithLabelValues("miss").Inc()

	ch := c.lookups.DoChan(strconv.FormatInt(telegramID, 10), func() (any, error) {
		lookupCtx := context.WithoutCancel(ctx)
		if c.timeout > 0 {
			var cancel context.CancelFunc
			lookupCtx, cancel = context.WithTimeout(lookupCtx, c.timeout)
			defer cancel()
		}

		var body struct {
			UserID *flexInt `json:"user_id"`
		}
		err := c.do(lookupCtx, request{
			op:     "get_user_id",
			method: http.MethodGet,
			path:   "/users/get-id/",
			query:  telegramQuery(telegramID),
			kind:   ServiceUnavailable,
		}, &body)
		if err != nil {
			return int64(0), err
		}
		if body.UserID == nil {
			return int64(0), schemaError(ServiceUnavailable, "user_id missing")
		}
		id := int64(*body.UserID)
		c.ids.set(telegramID, id)
		return id, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int64), nil
	case <-ctx.Done():
		return 0, NewError(ServiceUnavailable, ctx.Err())
	}
}

// GetUser fetches the user profile; nil when not registered
func (c *Client) GetUser(ctx context.Context, telegramID int64) (*domain.User, error) {
	var body struct {
		Results *[]domain.User `json:"results"`
	}
	err := c.do(ctx, request{
		op:     "get_user",
		method: http.MethodGet,
		path:   "/users",
		query:  telegramQuery(telegramID),
		kind:   ServiceUnavailable,
	}, &body)
	if err != nil {
		return nil, err
	}
	if body.Results == nil {
		return nil, schemaError(ServiceUnavailable, "results missing for user %d", telegramID)
	}
	if len(*body.Results) == 0 {
		return nil, nil
	}

	user := (*body.Results)[0]
	if err := user.CoreSettings.Validate(); err != nil {
		return nil, NewError(ServiceUnavailable, errors.Wrap(err, "invalid core settings"))
	}
	return &user, nil
}

// CreateUser registers a Telegram-only user
func (c *Client) CreateUser(ctx context.Context, telegramID int64) (*domain.User, error) {
	id := strconv.FormatInt(telegramID, 10)
	var user domain.User
	err := c.do(ctx, request{
		op:     "create_user",
		method: http.MethodPost,
		path:   "/users/",
		body: map[string]any{
			"username":      id,
			"telegram_only": true,
			"id_telegram":   id,
		},
		kind:   UserCreationFailed,
		expect: []int{http.StatusCreated},
	}, &user)
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, schemaError(UserCreationFailed, "created user has no id")
	}
	return &user, nil
}

// DeleteUser removes the user and all their data
func (c *Client) DeleteUser(ctx context.Context, telegramID int64) error {
	userID, err := c.ResolveID(ctx, telegramID)
	if err != nil {
		return err
	}
	err = c.do(ctx, request{
		op:     "delete_user",
		method: http.MethodDelete,
		path:   userPath(userID),
		kind:   UserDeletionFailed,
		expect: []int{http.StatusNoContent},
	}, nil)
	if err != nil {
		return err
	}
	c.ids.forget(telegramID)
	return nil
}

// CreateGroup creates a line item in the active space and period
func (c *Client) CreateGroup(ctx context.Context, telegramID int64, t domain.TransactionType, name string, plan decimal.Decimal) (*domain.Group, error) {
	userID, err := c.ResolveID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	var group domain.Group
	err = c.do(ctx, request{
		op:     "create_group",
		method: http.MethodPost,
		path:   userPath(userID, "summary"),
		body: map[string]any{
			"type_transaction": t,
			"group_name":       name,
			"plan_value":       plan.InexactFloat64(),
		},
		kind:   LineItemCreationFailed,
		expect: []int{http.StatusCreated},
	}, &group)
	if err != nil {
		return nil, err
	}
	if group.ID == 0 {
		return nil, schemaError(LineItemCreationFailed, "created group has no id")
	}
	return &group, nil
}

// GroupNameExists checks whether a line item with this name already exists
func (c *Client) GroupNameExists(ctx context.Context, telegramID int64, name string) (bool, error) {
	userID, err := c.ResolveID(ctx, telegramID)
	if err != nil {
		return false, err
	}
	var body struct {
		Summary *[]domain.Group `json:"summary"`
	}
	err = c.do(ctx, request{
		op:     "find_group",
		method: http.MethodGet,
		path:   userPath(userID, "summary"),
		query:  url.Values{"group_name": {name}},
		kind:   LineItemListFailed,
	}, &body)
	if err != nil {
		return false, err
	}
	if body.Summary == nil {
		return false, schemaError(LineItemListFailed, "summary missing")
	}
	return len(*body.Summary) > 0, nil
}

// fetchSummary loads the summary report, optionally filtered by type
func (c *Client) fetchSummary(ctx context.Context, telegramID int64, t domain.TransactionType, op string, kind Kind) (*domain.Summary, error) {
	userID, err := c.ResolveID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	var query url.Values
	if t != "" {
		query = url.Values{"type_transaction": {string(t)}}
	}

	var raw []byte
	err = c.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   userPath(userID, "summary"),
		query:  query,
		kind:   kind,
	}, &raw)
	if err != nil {
		return nil, err
	}

	var probe struct {
		Summary json.RawMessage `json:"summary"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, NewError(kind, errors.Wrap(err, "decode summary"))
	}
	if probe.Summary == nil {
		return nil, schemaError(kind, "summary missing")
	}

	var summary domain.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, NewError(kind, errors.Wrap(err, "decode summary"))
	}
	return &summary, nil
}

// ListGroups returns line items of the active period
func (c *Client) ListGroups(ctx context.Context, telegramID int64, t domain.TransactionType) (*domain.Summary, error) {
	return c.fetchSummary(ctx, telegramID, t, "list_groups", LineItemListFailed)
}

// GetSummary returns the period report or nil when it has no line items
func (c *Client) GetSummary(ctx context.Context, telegramID int64) (*domain.Summary, error) {
	summary, err := c.fetchSummary(ctx, telegramID, "", "get_summary", SummaryFetchFailed)
	if err != nil {
		return nil, err
	}
	if summary.Empty() {
		return nil, nil
	}
	return summary, nil
}

// GetGroup fetches one line item
func (c *Client) GetGroup(ctx context.Context, telegramID, groupID int64) (*domain.Group, error) {
	userID, err := c.ResolveID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	var group domain.Group
	err = c.do(ctx, request{
		op:     "get_group",
		method: http.MethodGet,
		path:   userPath(userID, "summary", strconv.FormatInt(groupID, 10)),
		kind:   LineItemFetchFailed,
	}, &group)
	if err != nil {
		return nil, err
	}
	if group.ID == 0 {
		return nil, schemaError(LineItemFetchFailed, "group %d has no id", groupID)
	}
	return &group, nil
}

// DeleteGroup removes a line item
func (c *Client) DeleteGroup(ctx context.Context, telegramID, groupID int64) error {
	userID, err := c.ResolveID(ctx, telegramID)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		op:     "delete_group",
		method: http.MethodDelete,
		path:   userPath(userID, "summary", strconv.FormatInt(groupID, 10)),
		kind:   LineItemDeletionFailed,
		expect: []int{http.StatusNoContent},
	}, nil)
}

// AddTransaction records a transaction against a line item
func (c *Client) AddTransaction(ctx context.Context, telegramID int64, tx domain.NewTransaction) (*domain.Transaction, error) {
	userID, err := c.ResolveID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	var created domain.Transaction
	err = c.do(ctx, request{
		op:     "add_transaction",
		method: http.MethodPost,
		path:   userPath(userID, "transactions"),
		body: map[string]any{
			"type_transaction":  tx.Type,
			"group_name":        tx.GroupName,
			"description":       tx.Description,
			"value_transaction": tx.Value.InexactFloat64(),
		},
		kind:   TransactionFailed,
		expect: []int{http.StatusOK, http.StatusCreated},
	}, &created)
	if err != nil {
		return nil, err
	}
	if created.ID == 0 {
		return nil, schemaError(TransactionFailed, "created transaction has no id")
	}
	return &created, nil
}

// UpdateCoreSettings patches the active space and/or period
func (c *Client) UpdateCoreSettings(ctx context.Context, telegramID int64, upd domain.CoreSettingsUpdate) error {
	userID, err := c.ResolveID(ctx, telegramID)
	if err != nil {
		return err
	}
	var body struct {
		CurrentSpaceID *flexInt `json:"current_space_id"`
		CurrentMonth   *int     `json:"current_month"`
		CurrentYear    *int     `json:"current_year"`
	}
	err = c.do(ctx, request{
		op:     "update_core_settings",
		method: http.MethodPatch,
		path:   userPath(userID, "core-settings"),
		body:   upd,
		kind:   SettingsUpdateFailed,
	}, &body)
	if err != nil {
		return err
	}
	settings := domain.CoreSettings{CurrentMonth: body.CurrentMonth, CurrentYear: body.CurrentYear}
	if err := settings.Validate(); err != nil {
		return NewError(SettingsUpdateFailed, errors.Wrap(err, "invalid core settings"))
	}
	return nil
}

// UpdateTelegramSettings patches chat-specific preferences
func (c *Client) UpdateTelegramSettings(ctx context.Context, telegramID int64, upd domain.TelegramSettingsUpdate) (*domain.TelegramSettings, error) {
	userID, err := c.ResolveID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	var settings domain.TelegramSettings
	err = c.do(ctx, request{
		op:     "update_telegram_settings",
		method: http.MethodPatch,
		path:   userPath(userID, "telegram-settings"),
		body:   upd,
		kind:   SettingsUpdateFailed,
	}, &settings)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSpace patches a space, typically its joint chat
func (c *Client) UpdateSpace(ctx context.Context, telegramID, spaceID int64, patch domain.SpacePatch) (*domain.Space, error) {
	userID, err := c.ResolveID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	var space domain.Space
	err = c.do(ctx, request{
		op:     "update_space",
		method: http.MethodPatch,
		path:   userPath(userID, "spaces", strconv.FormatInt(spaceID, 10)),
		body:   patch,
		kind:   SettingsUpdateFailed,
	}, &space)
	if err != nil {
		return nil, err
	}
	if space.ID == 0 {
		return nil, schemaError(SettingsUpdateFailed, "space %d has no id", spaceID)
	}
	return &space, nil
}

// LinkUser grants another user access to a space
func (c *Client) LinkUser(ctx context.Context, telegramID, spaceID, linkUserID int64) error {
	return c.spaceMembership(ctx, telegramID, spaceID, linkUserID, "link_user", LinkFailed)
}

// UnlinkUser revokes another user's access to a space
func (c *Client) UnlinkUser(ctx context.Context, telegramID, spaceID, unlinkUserID int64) error {
	return c.spaceMembership(ctx, telegramID, spaceID, unlinkUserID, "unlink_user", UnlinkFailed)
}

func (c *Client) spaceMembership(ctx context.Context, telegramID, spaceID, memberID int64, action string, kind Kind) error {
	userID, err := c.ResolveID(ctx, telegramID)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		op:     action,
		method: http.MethodPost,
		path:   userPath(userID, "spaces", strconv.FormatInt(spaceID, 10), action),
		body:   map[string]int64{"id": memberID},
		kind:   kind,
	}, nil)
}

// ListYears returns years that have data in the active space
func (c *Client) ListYears(ctx context.Context, telegramID int64) ([]int, error) {
	userID, err := c.ResolveID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	var body struct {
		Years *[]flexInt `json:"years"`
	}
	err = c.do(ctx, request{
		op:     "list_years",
		method: http.MethodGet,
		path:   userPath(userID, "summary", "years"),
		kind:   ArchiveFetchFailed,
	}, &body)
	if err != nil {
		return nil, err
	}
	if body.Years == nil {
		return nil, schemaError(ArchiveFetchFailed, "years missing")
	}
	return toInts(*body.Years), nil
}

// ListMonths returns months of a year that have data in the active space
func (c *Client) ListMonths(ctx context.Context, telegramID int64, year int) ([]int, error) {
	userID, err := c.ResolveID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	var body struct {
		Months *[]flexInt `json:"months"`
	}
	err = c.do(ctx, request{
		op:     "list_months",
		method: http.MethodGet,
		path:   userPath(userID, "summary", "months"),
		query:  url.Values{"year": {strconv.Itoa(year)}},
		kind:   ArchiveFetchFailed,
	}, &body)
	if err != nil {
		return nil, err
	}
	if body.Months == nil {
		return nil, schemaError(ArchiveFetchFailed, "months missing")
	}
	return toInts(*body.Months), nil
}

// ExportExcel downloads the workbook of the active space
func (c *Client) ExportExcel(ctx context.Context, telegramID int64) ([]byte, error) {
	userID, err := c.ResolveID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	var raw []byte
	err = c.do(ctx, request{
		op:     "export_excel",
		method: http.MethodGet,
		path:   userPath(userID, "export"),
		kind:   ExportFailed,
	}, &raw)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, schemaError(ExportFailed, "empty workbook")
	}
	return raw, nil
}

func toInts(values []flexInt) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(v)
	}
	return out
}
