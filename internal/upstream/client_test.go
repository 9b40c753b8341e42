package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accmint-dev/accmint/internal/config"
	"github.com/accmint-dev/accmint/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.Upstream{BaseURL: srv.URL, Timeout: 2 * time.Second})
}

func TestCreateTicketSuccess(t *testing.T) {
	var gotPath, gotDevice string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotDevice = r.Header.Get("Device-Id")
		w.Write([]byte(`{"code": 0, "msg": "", "ticket": "ticket-abc"}`))
	})

	res := client.CreateTicket(context.Background(), "device-1")
	require.True(t, res.Ok())
	assert.Equal(t, "ticket-abc", res.Ticket)
	assert.Equal(t, "/register/create_ticket", gotPath)
	assert.Equal(t, "device-1", gotDevice)
}

func TestCheckEmailSendsFormFields(t *testing.T) {
	var gotEmail, gotTicket, contentType string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotEmail = r.PostFormValue("email")
		gotTicket = r.PostFormValue("ticket")
		w.Write([]byte(`{"code": 0}`))
	})

	res := client.CheckEmail(context.Background(), "user@gmail.com", "device-1", "ticket-abc")
	require.True(t, res.Ok())
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, "user@gmail.com", gotEmail)
	assert.Equal(t, "ticket-abc", gotTicket)
}

func TestCheckUsernameRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/register/check_account_name", r.URL.Path)
		assert.Equal(t, "someuser12", r.PostFormValue("account_name"))
		w.Write([]byte(`{"code": 1201, "msg": "account name already in use"}`))
	})

	res := client.CheckUsername(context.Background(), "someuser12", "device-1", "ticket-abc")
	assert.Equal(t, domain.StatusRejected, res.Status)
	assert.Equal(t, "account name already in use", res.Reason)
}

func TestRejectionWithoutMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 500}`))
	})

	res := client.SendCode(context.Background(), "user@gmail.com", "device-1", "ticket-abc")
	assert.Equal(t, domain.StatusRejected, res.Status)
	assert.Equal(t, "upstream code 500", res.Reason)
}

func TestRegisterSubmitsDigestedPassword(t *testing.T) {
	var form map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = map[string]string{
			"email":         r.PostFormValue("email"),
			"code":          r.PostFormValue("code"),
			"account_name":  r.PostFormValue("account_name"),
			"hash_password": r.PostFormValue("hash_password"),
			"ticket":        r.PostFormValue("ticket"),
		}
		assert.Equal(t, "/register/verify_code", r.URL.Path)
		assert.Equal(t, "device-1", r.Header.Get("Device-Id"))
		w.Write([]byte(`{"code": 0}`))
	})

	res := client.Register(context.Background(), domain.Registration{
		Email:          "user@gmail.com",
		Code:           "123456",
		Username:       "someuser12",
		PasswordDigest: "deadbeef",
		DeviceID:       "device-1",
		Ticket:         "ticket-abc",
	})
	require.True(t, res.Ok())
	assert.Equal(t, "user@gmail.com", form["email"])
	assert.Equal(t, "123456", form["code"])
	assert.Equal(t, "someuser12", form["account_name"])
	assert.Equal(t, "deadbeef", form["hash_password"])
	assert.Equal(t, "ticket-abc", form["ticket"])
}

func TestTransportErrorOnUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on
	client := New(config.Upstream{BaseURL: srv.URL, Timeout: time.Second})

	res := client.CreateTicket(context.Background(), "device-1")
	assert.Equal(t, domain.StatusTransportError, res.Status)
	assert.NotEmpty(t, res.Reason)
}

func TestTransportErrorOnMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream proxy error</html>"))
	})

	res := client.CheckEmail(context.Background(), "user@gmail.com", "device-1", "ticket-abc")
	assert.Equal(t, domain.StatusTransportError, res.Status)
	assert.Contains(t, res.Reason, "status 502")
}

func TestContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := client.CreateTicket(ctx, "device-1")
	assert.Equal(t, domain.StatusTransportError, res.Status)
}

func stepCount(t *testing.T, step, outcome string) float64 {
	t.Helper()
	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "accmint_upstream_steps_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["step"] == step && labels["outcome"] == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestStepOutcomesAreCounted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 1408, "msg": "email taken"}`))
	})

	before := stepCount(t, "check_email", "rejected")
	res := client.CheckEmail(context.Background(), "user@gmail.com", "device-1", "ticket-abc")
	require.Equal(t, domain.StatusRejected, res.Status)
	assert.Equal(t, before+1, stepCount(t, "check_email", "rejected"))
}

func TestDigestDeterministicAndKeyed(t *testing.T) {
	d1 := NewDigest("key-one")
	d2 := NewDigest("key-two")

	sum := d1.Sum("Secret1!pass")
	assert.Len(t, sum, 64) // hex-encoded sha256
	assert.Equal(t, sum, d1.Sum("Secret1!pass"))
	assert.NotEqual(t, sum, d1.Sum("Secret1!paSS"))
	assert.NotEqual(t, sum, d2.Sum("Secret1!pass"))
	assert.NotEqual(t, "Secret1!pass", sum)
}
