package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	return m.Called(key, body, contentType).Error(0)
}

func TestAuditExport_NotConfigured(t *testing.T) {
	e := newEnv(t)

	_, err := e.audit.Export(context.Background())
	require.ErrorIs(t, err, common.ErrorUnavailable)
}

func TestAuditExport_UploadsJSONLines(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.createUser(t, "a@b.com")
	e.createUser(t, "c@d.com")

	up := &mockUploader{}
	svc := NewAuditService(e.db, e.rm, up)
	at := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)
	svc.now = fixedClock(at)
	keyPattern := regexp.MustCompile(`^audit/` + at.Format("2006/01/02") + `/[0-9a-f-]{36}\.jsonl$`)

	var body []byte
	up.On("Upload", mock.MatchedBy(func(key string) bool {
		return keyPattern.MatchString(key)
	}), mock.Anything, "application/x-ndjson").
		Run(func(args mock.Arguments) { body = args.Get(1).([]byte) }).
		Return(nil).Once()

	res, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Entries)
	up.AssertExpectations(t)

	lines := bytes.Split(bytes.TrimSpace(body), []byte("\n"))
	require.Len(t, lines, 2)
	var entry models.AuditEntry
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "user.create", entry.Action)

	// the export itself is audited
	list, err := svc.List(ctx, models.AuditFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "audit.export", list[0].Action)
}

func TestAuditExport_UploadError(t *testing.T) {
	e := newEnv(t)
	up := &mockUploader{}
	up.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("s3 down"))

	_, err := NewAuditService(e.db, e.rm, up).Export(context.Background())
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestAuditList_NegativeLimit(t *testing.T) {
	_, err := newEnv(t).audit.List(context.Background(), models.AuditFilter{Limit: -1})
	require.ErrorIs(t, err, common.ErrorBadRequest)
}

func TestHealthPing(t *testing.T) {
	e := newEnv(t)
	h := NewHealthService(e.db)
	require.NoError(t, h.Ping(context.Background()))

	require.NoError(t, e.db.Close())
	err := h.Ping(context.Background())
	require.ErrorIs(t, err, common.ErrorUnavailable)
	assert.Equal(t, "Database is not connected", common.Message(err))
}
