package member_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kchsoft/gym-ledger/internal/member"
	"github.com/kchsoft/gym-ledger/internal/model"
	sharedError "github.com/kchsoft/gym-ledger/internal/shared/error"
	"github.com/kchsoft/gym-ledger/internal/shared/photo"
	"github.com/kchsoft/gym-ledger/internal/shared/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestEnvironment creates all dependencies needed for member service tests
func setupTestEnvironment(t *testing.T) (*member.MemberService, *gorm.DB, string) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	photoDir := t.TempDir()
	cfg := testutil.NewTestConfig(photoDir)

	service := member.NewMemberService(
		db,
		member.NewMemberRepository(),
		photo.NewStore(cfg.Photo),
		model.DefaultFeePolicy(),
		nil,
	)
	return service, db, photoDir
}

func validFields(userID, cnic string) member.MemberFields {
	return member.MemberFields{
		UserID:         userID,
		Name:           "Ali Khan",
		Contact:        "03001234567",
		CNIC:           cnic,
		Location:       "Lahore",
		JoinDate:       "2024-01-01",
		ExpiryDate:     "2024-12-31",
		SportCategory:  "Gym",
		MembershipType: "30-day",
		HasTreadmill:   true,
		BaseFee:        2000,
	}
}

func createMember(t *testing.T, service *member.MemberService, userID, cnic string) *member.MemberResponse {
	t.Helper()

	resp, err := service.Create(context.Background(), &member.CreateMemberRequest{MemberFields: validFields(userID, cnic)})
	require.NoError(t, err)
	return resp
}

func photoFiles(t *testing.T, dir string) []string {
	t.Helper()

	files, err := filepath.Glob(filepath.Join(dir, "member_*"))
	require.NoError(t, err)
	return files
}

// failingPhotoStore accepts every upload but fails on I/O
type failingPhotoStore struct{}

func (failingPhotoStore) Validate([]byte) error { return nil }

func (failingPhotoStore) Save(context.Context, string, []byte) (string, error) {
	return "", errors.New("disk full")
}

func (failingPhotoStore) Delete(context.Context, string) error {
	return errors.New("permission denied")
}

func TestCreate_Success(t *testing.T) {
	// Given
	service, _, _ := setupTestEnvironment(t)

	// When
	resp := createMember(t, service, "1001", "1234567890123")

	// Then: total_fee = base_fee + 400, active
	assert.Equal(t, "1001", resp.UserID)
	assert.Equal(t, 2400.0, resp.TotalFee)
	assert.True(t, resp.IsActive)
	assert.Equal(t, "2024-12-31", resp.ExpiryDate)
	assert.Equal(t, "Lahore", resp.Location)
	assert.Empty(t, resp.Designation)
}

func TestCreate_WithoutTreadmill(t *testing.T) {
	service, _, _ := setupTestEnvironment(t)

	fields := validFields("1002", "1234567890124")
	fields.HasTreadmill = false

	resp, err := service.Create(context.Background(), &member.CreateMemberRequest{MemberFields: fields})

	require.NoError(t, err)
	assert.Equal(t, 2000.0, resp.TotalFee)
}

func TestCreate_ValidationError(t *testing.T) {
	service, _, _ := setupTestEnvironment(t)

	testCases := []struct {
		name   string
		mutate func(f *member.MemberFields)
		field  string
	}{
		{name: "non numeric user_id", mutate: func(f *member.MemberFields) { f.UserID = "10a1" }, field: "user_id"},
		{name: "short cnic", mutate: func(f *member.MemberFields) { f.CNIC = "123456789012" }, field: "cnic"},
		{name: "short contact", mutate: func(f *member.MemberFields) { f.Contact = "030012" }, field: "contact"},
		{name: "invalid join_date", mutate: func(f *member.MemberFields) { f.JoinDate = "2024-02-30" }, field: "join_date"},
		{name: "missing expiry_date", mutate: func(f *member.MemberFields) { f.ExpiryDate = "" }, field: "expiry_date"},
		{name: "zero base_fee", mutate: func(f *member.MemberFields) { f.BaseFee = 0 }, field: "base_fee"},
		{name: "negative base_fee", mutate: func(f *member.MemberFields) { f.BaseFee = -10 }, field: "base_fee"},
		{name: "unknown sport", mutate: func(f *member.MemberFields) { f.SportCategory = "Cricket" }, field: "sport_category"},
		{name: "empty membership_type", mutate: func(f *member.MemberFields) { f.MembershipType = "" }, field: "membership_type"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fields := validFields("2001", "9999999999999")
			tc.mutate(&fields)

			_, err := service.Create(context.Background(), &member.CreateMemberRequest{MemberFields: fields})

			require.Error(t, err)
			assert.ErrorIs(t, err, member.ErrValidation)

			var fieldErr *sharedError.FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tc.field, fieldErr.Field)
		})
	}
}

func TestCreate_DuplicateUserID(t *testing.T) {
	service, _, _ := setupTestEnvironment(t)
	createMember(t, service, "1001", "1234567890123")

	_, err := service.Create(context.Background(), &member.CreateMemberRequest{MemberFields: validFields("1001", "3210987654321")})

	require.Error(t, err)
	assert.ErrorIs(t, err, member.ErrDuplicateKey)

	resp := sharedError.Resolve(err)
	assert.Equal(t, "MEMBER-002", resp.Code)
	assert.Equal(t, "user_id", resp.Field)
}

func TestCreate_DuplicateCNIC_EvenWhenInactive(t *testing.T) {
	// Given: a deactivated member still owns its cnic
	service, _, _ := setupTestEnvironment(t)
	createMember(t, service, "1001", "1234567890123")
	require.NoError(t, service.Deactivate(context.Background(), "1001"))

	// When
	_, err := service.Create(context.Background(), &member.CreateMemberRequest{MemberFields: validFields("1002", "1234567890123")})

	// Then
	require.Error(t, err)
	assert.ErrorIs(t, err, member.ErrDuplicateKey)

	var fieldErr *sharedError.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "cnic", fieldErr.Field)
}

func TestCreate_DeactivatedUserIDIsNotReused(t *testing.T) {
	service, _, _ := setupTestEnvironment(t)
	createMember(t, service, "1001", "1234567890123")
	require.NoError(t, service.Deactivate(context.Background(), "1001"))

	_, err := service.Create(context.Background(), &member.CreateMemberRequest{MemberFields: validFields("1001", "3210987654321")})

	assert.ErrorIs(t, err, member.ErrDuplicateKey)
}

func TestCreate_WithPhoto(t *testing.T) {
	service, _, photoDir := setupTestEnvironment(t)

	resp, err := service.Create(context.Background(), &member.CreateMemberRequest{
		MemberFields: validFields("1001", "1234567890123"),
		Photo:        &member.PhotoUpload{Data: testutil.PNGBytes(t)},
	})

	require.NoError(t, err)
	require.NotEmpty(t, resp.PhotoRef)
	assert.FileExists(t, resp.PhotoRef)
	assert.Len(t, photoFiles(t, photoDir), 1)
}

func TestCreate_RejectsUnsupportedPhoto(t *testing.T) {
	service, db, photoDir := setupTestEnvironment(t)

	_, err := service.Create(context.Background(), &member.CreateMemberRequest{
		MemberFields: validFields("1001", "1234567890123"),
		Photo:        &member.PhotoUpload{Data: []byte("GIF89a not really an image")},
	})

	require.Error(t, err)
	var fieldErr *sharedError.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "photo", fieldErr.Field)
	assert.ErrorIs(t, err, member.ErrValidation)

	// Then: nothing was written
	var count int64
	require.NoError(t, db.Model(&model.Member{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, photoFiles(t, photoDir))
}

func TestCreate_DuplicateRemovesSavedPhoto(t *testing.T) {
	service, _, photoDir := setupTestEnvironment(t)
	createMember(t, service, "1001", "1234567890123")

	_, err := service.Create(context.Background(), &member.CreateMemberRequest{
		MemberFields: validFields("1001", "3210987654321"),
		Photo:        &member.PhotoUpload{Data: testutil.PNGBytes(t)},
	})

	assert.ErrorIs(t, err, member.ErrDuplicateKey)
	assert.Empty(t, photoFiles(t, photoDir))
}

func TestCreate_PhotoFailureIsSwallowed(t *testing.T) {
	// Given: a photo store that cannot write
	db := testutil.SetupTestDB(t)
	service := member.NewMemberService(db, member.NewMemberRepository(), failingPhotoStore{}, model.DefaultFeePolicy(), nil)

	// When
	resp, err := service.Create(context.Background(), &member.CreateMemberRequest{
		MemberFields: validFields("1001", "1234567890123"),
		Photo:        &member.PhotoUpload{Data: []byte("anything")},
	})

	// Then: the member is still created, without a photo
	require.NoError(t, err)
	assert.Empty(t, resp.PhotoRef)

	// Deactivate must also survive a failing delete
	require.NoError(t, db.Model(&model.Member{}).Where("user_id = ?", "1001").Update("photo_ref", "photos/gone.png").Error)
	require.NoError(t, service.Deactivate(context.Background(), "1001"))

	stored, err := service.Get(context.Background(), "1001")
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestUpdate_RecomputesTotalFee(t *testing.T) {
	service, _, _ := setupTestEnvironment(t)
	createMember(t, service, "1001", "1234567890123")

	fields := validFields("1001", "1234567890123")
	fields.BaseFee = 3000
	fields.HasTreadmill = false
	fields.Name = "Ali Raza"

	resp, err := service.Update(context.Background(), &member.UpdateMemberRequest{OriginalUserID: "1001", MemberFields: fields})

	require.NoError(t, err)
	assert.Equal(t, 3000.0, resp.TotalFee)
	assert.Equal(t, "Ali Raza", resp.Name)
}

func TestUpdate_ChangesUserIDWithoutPayments(t *testing.T) {
	// Given
	service, _, _ := setupTestEnvironment(t)
	createMember(t, service, "1001", "1234567890123")

	// When: the edited values include a new user_id
	resp, err := service.Update(context.Background(), &member.UpdateMemberRequest{
		OriginalUserID: "1001",
		MemberFields:   validFields("1005", "1234567890123"),
	})

	// Then: the original row is the one rewritten
	require.NoError(t, err)
	assert.Equal(t, "1005", resp.UserID)

	_, err = service.FindActive(context.Background(), "1001")
	assert.ErrorIs(t, err, member.ErrMemberNotFound)

	found, err := service.FindActive(context.Background(), "1005")
	require.NoError(t, err)
	assert.Equal(t, "1234567890123", found.CNIC)
}

func TestUpdate_UserIDLockedOncePaid(t *testing.T) {
	service, db, _ := setupTestEnvironment(t)
	createMember(t, service, "1001", "1234567890123")

	payment := model.NewPayment("1001", 2400, model.Today(time.Now()), "2024-06", nil)
	require.NoError(t, db.Create(payment).Error)

	_, err := service.Update(context.Background(), &member.UpdateMemberRequest{
		OriginalUserID: "1001",
		MemberFields:   validFields("1005", "1234567890123"),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, member.ErrUserIDImmutable)
	assert.Equal(t, "MEMBER-003", sharedError.Resolve(err).Code)
}

func TestUpdate_DuplicateCNIC(t *testing.T) {
	service, _, _ := setupTestEnvironment(t)
	createMember(t, service, "1001", "1234567890123")
	createMember(t, service, "1002", "3210987654321")

	_, err := service.Update(context.Background(), &member.UpdateMemberRequest{
		OriginalUserID: "1002",
		MemberFields:   validFields("1002", "1234567890123"),
	})

	assert.ErrorIs(t, err, member.ErrDuplicateKey)
}

func TestUpdate_InactiveMemberIsNotFound(t *testing.T) {
	service, _, _ := setupTestEnvironment(t)
	createMember(t, service, "1001", "1234567890123")
	require.NoError(t, service.Deactivate(context.Background(), "1001"))

	_, err := service.Update(context.Background(), &member.UpdateMemberRequest{
		OriginalUserID: "1001",
		MemberFields:   validFields("1001", "1234567890123"),
	})

	assert.ErrorIs(t, err, member.ErrMemberNotFound)
}

func TestUpdate_ReplacesPhoto(t *testing.T) {
	// Given: a member with a photo
	service, _, photoDir := setupTestEnvironment(t)
	created, err := service.Create(context.Background(), &member.CreateMemberRequest{
		MemberFields: validFields("1001", "1234567890123"),
		Photo:        &member.PhotoUpload{Data: testutil.PNGBytes(t)},
	})
	require.NoError(t, err)

	// When: a new photo is supplied
	updated, err := service.Update(context.Background(), &member.UpdateMemberRequest{
		OriginalUserID: "1001",
		MemberFields:   validFields("1001", "1234567890123"),
		Photo:          &member.PhotoUpload{Data: testutil.PNGBytes(t)},
	})

	// Then: only the new asset remains
	require.NoError(t, err)
	assert.NotEqual(t, created.PhotoRef, updated.PhotoRef)
	assert.NoFileExists(t, created.PhotoRef)
	assert.FileExists(t, updated.PhotoRef)
	assert.Len(t, photoFiles(t, photoDir), 1)
}

func TestUpdate_KeepsPhotoWhenNoneSupplied(t *testing.T) {
	service, _, _ := setupTestEnvironment(t)
	created, err := service.Create(context.Background(), &member.CreateMemberRequest{
		MemberFields: validFields("1001", "1234567890123"),
		Photo:        &member.PhotoUpload{Data: testutil.PNGBytes(t)},
	})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), &member.UpdateMemberRequest{
		OriginalUserID: "1001",
		MemberFields:   validFields("1001", "1234567890123"),
	})

	require.NoError(t, err)
	assert.Equal(t, created.PhotoRef, updated.PhotoRef)
	assert.FileExists(t, updated.PhotoRef)
}

func TestDeactivate_HidesMemberButKeepsRecord(t *testing.T) {
	// Given
	service, _, _ := setupTestEnvironment(t)
	created, err := service.Create(context.Background(), &member.CreateMemberRequest{
		MemberFields: validFields("1001", "1234567890123"),
		Photo:        &member.PhotoUpload{Data: testutil.PNGBytes(t)},
	})
	require.NoError(t, err)
	createMember(t, service, "1002", "3210987654321")

	// When
	require.NoError(t, service.Deactivate(context.Background(), "1001"))

	// Then: excluded from active lookups
	_, err = service.FindActive(context.Background(), "1001")
	assert.ErrorIs(t, err, member.ErrMemberNotFound)

	_, err = service.FindActiveByCNIC(context.Background(), "1234567890123")
	assert.ErrorIs(t, err, member.ErrMemberNotFound)

	found, err := service.Search(context.Background(), "1234567890123")
	require.NoError(t, err)
	assert.Empty(t, found)

	active, err := service.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "1002", active[0].UserID)

	// Then: the row remains for history, photo removed
	stored, err := service.Get(context.Background(), "1001")
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Empty(t, stored.PhotoRef)
	_, statErr := os.Stat(created.PhotoRef)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDeactivate_Twice(t *testing.T) {
	service, _, _ := setupTestEnvironment(t)
	createMember(t, service, "1001", "1234567890123")
	require.NoError(t, service.Deactivate(context.Background(), "1001"))

	err := service.Deactivate(context.Background(), "1001")

	assert.ErrorIs(t, err, member.ErrMemberNotFound)
}

func TestSearch_ByUserIDOrCNIC(t *testing.T) {
	service, _, _ := setupTestEnvironment(t)
	createMember(t, service, "1001", "1234567890123")
	createMember(t, service, "1002", "3210987654321")

	byID, err := service.Search(context.Background(), "1002")
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "3210987654321", byID[0].CNIC)

	byCNIC, err := service.Search(context.Background(), "1234567890123")
	require.NoError(t, err)
	require.Len(t, byCNIC, 1)
	assert.Equal(t, "1001", byCNIC[0].UserID)
}

func TestReconcileFees(t *testing.T) {
	// Given: rows whose total_fee drifted, one of them inactive
	service, db, _ := setupTestEnvironment(t)
	createMember(t, service, "1001", "1234567890123")
	createMember(t, service, "1002", "3210987654321")
	createMember(t, service, "1003", "1111111111111")
	require.NoError(t, service.Deactivate(context.Background(), "1003"))

	require.NoError(t, db.Model(&model.Member{}).Where("user_id IN ?", []string{"1001", "1003"}).
		Update("total_fee", 100).Error)

	var untouched model.Member
	require.NoError(t, db.First(&untouched, "user_id = ?", "1002").Error)

	// When
	changed, err := service.ReconcileFees(context.Background())

	// Then
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	var members []model.Member
	require.NoError(t, db.Order("user_id").Find(&members).Error)
	for _, m := range members {
		assert.Equal(t, m.BaseFee+400, m.TotalFee, "user_id=%s", m.UserID)
	}

	var after model.Member
	require.NoError(t, db.First(&after, "user_id = ?", "1002").Error)
	assert.True(t, untouched.UpdatedAt.Equal(after.UpdatedAt), "unchanged rows keep updated_at")

	// When: run again, nothing diverges
	changed, err = service.ReconcileFees(context.Background())
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestReconcileFees_SurchargeChange(t *testing.T) {
	service, db, _ := setupTestEnvironment(t)
	createMember(t, service, "1001", "1234567890123")

	repriced := member.NewMemberService(db, member.NewMemberRepository(), failingPhotoStore{}, model.FeePolicy{TreadmillSurcharge: 500}, nil)
	changed, err := repriced.ReconcileFees(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	resp, err := repriced.FindActive(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, 2500.0, resp.TotalFee)
}

func TestFindActive_StorageFailure(t *testing.T) {
	// Given: the store fails on query
	db, mock := testutil.SetupMockDB(t)
	service := member.NewMemberService(db, member.NewMemberRepository(), failingPhotoStore{}, model.DefaultFeePolicy(), nil)
	mock.ExpectQuery(`SELECT \* FROM "members"`).WillReturnError(errors.New("connection reset"))

	// When
	_, err := service.FindActive(context.Background(), "1001")

	// Then: surfaced as a generic failure, not a domain error
	require.Error(t, err)
	assert.NotErrorIs(t, err, member.ErrMemberNotFound)
	assert.Equal(t, sharedError.InternalError.Code, sharedError.Resolve(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_StorageFailureRollsBack(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	service := member.NewMemberService(db, member.NewMemberRepository(), failingPhotoStore{}, model.DefaultFeePolicy(), nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "members"`).WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err := service.Create(context.Background(), &member.CreateMemberRequest{MemberFields: validFields("1001", "1234567890123")})

	require.Error(t, err)
	assert.NotErrorIs(t, err, member.ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMockDB_ReturnsRows(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	service := member.NewMemberService(db, member.NewMemberRepository(), failingPhotoStore{}, model.DefaultFeePolicy(), nil)

	rows := sqlmock.NewRows([]string{"user_id", "name", "cnic", "is_active", "base_fee", "total_fee"}).
		AddRow("1001", "Ali Khan", "1234567890123", true, 2000, 2400)
	mock.ExpectQuery(`SELECT \* FROM "members"`).WillReturnRows(rows)

	resp, err := service.ListActive(context.Background())

	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, 2400.0, resp[0].TotalFee)
	assert.NoError(t, mock.ExpectationsWereMet())
}
