package payments

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func webhookBody(t *testing.T, reference string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"event": "charge.success",
		"data":  map[string]any{"reference": reference},
	})
	require.NoError(t, err)
	return body
}

func TestHandleWebhook_Success(t *testing.T) {
	gw := &stubGateway{succeed: true}
	fc := &fakeContribs{contribution: pendingContribution("50000.00")}
	svc, db := newTestService(t, gw, fc)

	p, err := svc.InitializePayment(context.Background(), InitializePaymentInput{
		ContributionID: fc.contribution.ID,
		Amount:         mustDecimal(t, "50000.00"),
		Gateway:        "stub",
		PayerContact:   "member@example.com",
	})
	require.NoError(t, err)

	svc.HandleWebhook(context.Background(), "stub", stubSignature, webhookBody(t, p.Reference))

	stored, err := svc.GetPayment(context.Background(), p.Reference)
	require.NoError(t, err)
	require.Equal(t, StatusSucceeded, stored.Status)
	require.Equal(t, 1, fc.marked())

	var ev GatewayEvent
	require.NoError(t, db.First(&ev, "gateway = ?", "stub").Error)
	require.NotNil(t, ev.ProcessedAt)
	require.Nil(t, ev.ProcessError)
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	gw := &stubGateway{succeed: true}
	fc := &fakeContribs{contribution: pendingContribution("50000.00")}
	svc, db := newTestService(t, gw, fc)

	p, err := svc.InitializePayment(context.Background(), InitializePaymentInput{
		ContributionID: fc.contribution.ID,
		Amount:         mustDecimal(t, "50000.00"),
		Gateway:        "stub",
		PayerContact:   "member@example.com",
	})
	require.NoError(t, err)

	svc.HandleWebhook(context.Background(), "stub", "forged-signature", webhookBody(t, p.Reference))

	// no transition, no journal entry, no verify call
	stored, err := svc.GetPayment(context.Background(), p.Reference)
	require.NoError(t, err)
	require.Equal(t, StatusPending, stored.Status)

	_, verifyCalls := gw.counts()
	require.Zero(t, verifyCalls)

	var count int64
	require.NoError(t, db.Model(&GatewayEvent{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestHandleWebhook_UnknownReference(t *testing.T) {
	gw := &stubGateway{succeed: true}
	fc := &fakeContribs{contribution: pendingContribution("50000.00")}
	svc, db := newTestService(t, gw, fc)

	// valid signature, reference that matches nothing: returns normally
	svc.HandleWebhook(context.Background(), "stub", stubSignature, webhookBody(t, "PMT-0-unknown"))

	var ev GatewayEvent
	require.NoError(t, db.First(&ev, "gateway = ?", "stub").Error)
	require.NotNil(t, ev.ProcessedAt)
	require.NotNil(t, ev.ProcessError)
	require.Zero(t, fc.marked())
}

func TestHandleWebhook_UnparseablePayload(t *testing.T) {
	gw := &stubGateway{succeed: true}
	fc := &fakeContribs{contribution: pendingContribution("50000.00")}
	svc, _ := newTestService(t, gw, fc)

	svc.HandleWebhook(context.Background(), "stub", stubSignature, []byte("not json at all"))

	_, verifyCalls := gw.counts()
	require.Zero(t, verifyCalls)
}

func TestHandleWebhook_UnknownGateway(t *testing.T) {
	gw := &stubGateway{succeed: true}
	fc := &fakeContribs{contribution: pendingContribution("50000.00")}
	svc, _ := newTestService(t, gw, fc)

	svc.HandleWebhook(context.Background(), "no-such-gateway", stubSignature, webhookBody(t, "PMT-0-x"))

	_, verifyCalls := gw.counts()
	require.Zero(t, verifyCalls)
}

func TestHandleWebhook_Redelivery(t *testing.T) {
	gw := &stubGateway{succeed: true}
	fc := &fakeContribs{contribution: pendingContribution("50000.00")}
	svc, db := newTestService(t, gw, fc)

	p, err := svc.InitializePayment(context.Background(), InitializePaymentInput{
		ContributionID: fc.contribution.ID,
		Amount:         mustDecimal(t, "50000.00"),
		Gateway:        "stub",
		PayerContact:   "member@example.com",
	})
	require.NoError(t, err)

	body := webhookBody(t, p.Reference)
	svc.HandleWebhook(context.Background(), "stub", stubSignature, body)
	svc.HandleWebhook(context.Background(), "stub", stubSignature, body)

	// identical redelivery is dropped at the journal
	var count int64
	require.NoError(t, db.Model(&GatewayEvent{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	_, verifyCalls := gw.counts()
	require.Equal(t, 1, verifyCalls)
	require.Equal(t, 1, fc.marked())
}
