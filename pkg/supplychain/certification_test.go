package supplychain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cloverErrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/ledger"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/roles"
)

func validCertificationRequest(processingID uuid.UUID) models.IssueCertificationRequest {
	return models.IssueCertificationRequest{
		ProcessingID: processingID,
		CertType:     "HALAL",
		Issuer:       "Kenya Bureau of Standards",
		IssueDate:    time.Now().UTC(),
		ExpiryDate:   time.Now().UTC().Add(365 * 24 * time.Hour),
	}
}

func TestIssueCertificationStartsPending(t *testing.T) {
	ts := newTestService(t)
	processing := ts.seedProcessing(t)

	cert, err := ts.IssueCertification(actorCtx(roles.RoleRegulator), validCertificationRequest(processing.ID))
	require.NoError(t, err)
	assert.Equal(t, models.CertificationStatusPending, cert.Status)
	assert.Equal(t, models.SyncStatusPending, cert.SyncStatus)

	ts.store.mu.Lock()
	stored := ts.store.certs[0]
	ts.store.mu.Unlock()
	assert.Equal(t, models.SyncStatusConfirmed, stored.SyncStatus)
	assert.Contains(t, ts.client.submitted(), ledger.FuncIssueCertification)
}

func TestIssueCertificationExpiryMustFollowIssue(t *testing.T) {
	ts := newTestService(t)
	processing := ts.seedProcessing(t)

	request := validCertificationRequest(processing.ID)
	request.ExpiryDate = request.IssueDate

	_, err := ts.IssueCertification(actorCtx(roles.RoleRegulator), request)
	assert.True(t, cloverErrors.IsInvalidInput(err))

	request.ExpiryDate = request.IssueDate.Add(-time.Hour)
	_, err = ts.IssueCertification(actorCtx(roles.RoleRegulator), request)
	assert.True(t, cloverErrors.IsInvalidInput(err))
}

func TestIssueCertificationUnknownProcessing(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.IssueCertification(actorCtx(roles.RoleRegulator), validCertificationRequest(uuid.New()))
	assert.True(t, cloverErrors.IsNotFound(err))
}

func TestIssueCertificationCapability(t *testing.T) {
	ts := newTestService(t)
	processing := ts.seedProcessing(t)

	_, err := ts.IssueCertification(actorCtx(roles.RoleProcessor), validCertificationRequest(processing.ID))
	assert.True(t, cloverErrors.IsUnauthorized(err))
}

func TestDecideCertificationApproveStaysLocal(t *testing.T) {
	ts := newTestService(t)
	processing := ts.seedProcessing(t)

	cert, err := ts.IssueCertification(actorCtx(roles.RoleRegulator), validCertificationRequest(processing.ID))
	require.NoError(t, err)
	before := len(ts.client.submitted())

	approved, err := ts.DecideCertification(actorCtx(roles.RoleRegulator), cert.ID, models.CertificationStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.CertificationStatusApproved, approved.Status)

	assert.Len(t, ts.client.submitted(), before, "only the issuance is ledgered, not the decision")

	ts.store.mu.Lock()
	stored := ts.store.certs[0]
	ts.store.mu.Unlock()
	assert.Equal(t, models.SyncStatusConfirmed, stored.SyncStatus, "the issuance sync record is untouched")
}

func TestDecideCertificationIsOneShot(t *testing.T) {
	ts := newTestService(t)
	processing := ts.seedProcessing(t)
	ctx := actorCtx(roles.RoleRegulator)

	cert, err := ts.IssueCertification(ctx, validCertificationRequest(processing.ID))
	require.NoError(t, err)

	_, err = ts.DecideCertification(ctx, cert.ID, models.CertificationStatusRejected)
	require.NoError(t, err)

	_, err = ts.DecideCertification(ctx, cert.ID, models.CertificationStatusApproved)
	assert.True(t, cloverErrors.IsInvalidTransition(err), "a decided certification never changes again")
}

func TestDecideCertificationNotFound(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.DecideCertification(actorCtx(roles.RoleRegulator), uuid.New(), models.CertificationStatusApproved)
	assert.True(t, cloverErrors.IsNotFound(err))
}

func TestListCertificationsByProcessing(t *testing.T) {
	ts := newTestService(t)
	processing := ts.seedProcessing(t)
	ctx := actorCtx(roles.RoleRegulator)

	_, err := ts.IssueCertification(ctx, validCertificationRequest(processing.ID))
	require.NoError(t, err)

	certs, err := ts.ListCertificationsByProcessing(ctx, processing.ID)
	require.NoError(t, err)
	assert.Len(t, certs, 1)
}

func TestGetCertificationNotFound(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.GetCertification(actorCtx(roles.RoleRegulator), uuid.New())
	assert.True(t, cloverErrors.IsNotFound(err))
}
