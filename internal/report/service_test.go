package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/kchsoft/gym-ledger/internal/member"
	"github.com/kchsoft/gym-ledger/internal/model"
	"github.com/kchsoft/gym-ledger/internal/payment"
	"github.com/kchsoft/gym-ledger/internal/report"
	sharedError "github.com/kchsoft/gym-ledger/internal/shared/error"
	"github.com/kchsoft/gym-ledger/internal/shared/photo"
	"github.com/kchsoft/gym-ledger/internal/shared/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	members  *member.MemberService
	payments *payment.PaymentService
	reports  *report.ReportService
}

// setupTestEnvironment creates all dependencies needed for report tests
func setupTestEnvironment(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.NewTestConfig(t.TempDir())
	memberRepo := member.NewMemberRepository()
	clock := func() time.Time { return time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC) }

	return &testEnv{
		members:  member.NewMemberService(db, memberRepo, photo.NewStore(cfg.Photo), model.DefaultFeePolicy(), nil),
		payments: payment.NewPaymentService(db, payment.NewPaymentRepository(), memberRepo, nil, payment.WithClock(clock)),
		reports:  report.NewReportService(db, report.NewReportRepository()),
	}
}

type memberFixture struct {
	userID, cnic, sport, plan, expiry string
	baseFee                           float64
}

func (e *testEnv) createMember(t *testing.T, f memberFixture) {
	t.Helper()

	_, err := e.members.Create(context.Background(), &member.CreateMemberRequest{
		MemberFields: member.MemberFields{
			UserID:         f.userID,
			Name:           "Member " + f.userID,
			Contact:        "03001234567",
			CNIC:           f.cnic,
			JoinDate:       "2024-01-01",
			ExpiryDate:     f.expiry,
			SportCategory:  f.sport,
			MembershipType: f.plan,
			BaseFee:        f.baseFee,
		},
	})
	require.NoError(t, err)
}

func (e *testEnv) pay(t *testing.T, userID string, amount float64, month, plan string) {
	t.Helper()

	_, err := e.payments.RecordPayment(context.Background(), &payment.RecordPaymentRequest{
		UserID: userID, Amount: amount, Month: month, MembershipType: plan,
	})
	require.NoError(t, err)
}

// seed: 1001 gym 30-day, 1002 squash 15-day paying twice, 1003 gym 15-day paying once, all in 2024-06
func seed(t *testing.T, env *testEnv) {
	t.Helper()

	env.createMember(t, memberFixture{"1001", "1000000000001", "Gym", "30-day", "2024-12-31", 2000})
	env.createMember(t, memberFixture{"1002", "1000000000002", "Squash", "15-day", "2024-12-31", 1200})
	env.createMember(t, memberFixture{"1003", "1000000000003", "Gym", "15-day", "2024-12-31", 1000})

	env.pay(t, "1001", 2000, "2024-06", "30-day")
	env.pay(t, "1002", 1200, "2024-06", "15-day")
	env.pay(t, "1002", 1200, "2024-06", "15-day")
	env.pay(t, "1003", 1000, "2024-06", "15-day")
	env.pay(t, "1001", 2000, "2024-05", "30-day")
}

func TestPaymentReports(t *testing.T) {
	env := setupTestEnvironment(t)
	seed(t, env)

	testCases := []struct {
		name          string
		request       report.ReportRequest
		rows          int
		revenue       float64
		uniqueMembers int
	}{
		{name: "all", request: report.ReportRequest{Kind: report.KindAll, Month: "2024-06"}, rows: 4, revenue: 5400, uniqueMembers: 3},
		{name: "30-day", request: report.ReportRequest{Kind: report.KindPlan30Day, Month: "2024-06"}, rows: 1, revenue: 2000, uniqueMembers: 1},
		{name: "15-day", request: report.ReportRequest{Kind: report.KindPlan15Day, Month: "2024-06"}, rows: 3, revenue: 3400, uniqueMembers: 2},
		{name: "gym", request: report.ReportRequest{Kind: report.KindSportCategory, Month: "2024-06", Sport: "Gym"}, rows: 2, revenue: 3000, uniqueMembers: 2},
		{name: "every sport", request: report.ReportRequest{Kind: report.KindSportCategory, Month: "2024-06", Sport: "All"}, rows: 4, revenue: 5400, uniqueMembers: 3},
		{name: "other month", request: report.ReportRequest{Kind: report.KindAll, Month: "2024-05"}, rows: 1, revenue: 2000, uniqueMembers: 1},
		{name: "empty month", request: report.ReportRequest{Kind: report.KindAll, Month: "2023-01"}, rows: 0, revenue: 0, uniqueMembers: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := env.reports.Generate(context.Background(), &tc.request)

			require.NoError(t, err)
			assert.Equal(t, tc.rows, result.Len())
			assert.Equal(t, tc.revenue, result.TotalRevenue)
			assert.Equal(t, tc.uniqueMembers, result.UniqueMembers)
		})
	}
}

func TestPaymentReport_RowsAndSummary(t *testing.T) {
	env := setupTestEnvironment(t)
	seed(t, env)

	result, err := env.reports.Generate(context.Background(), &report.ReportRequest{Kind: report.KindAll, Month: "2024-06"})

	require.NoError(t, err)
	assert.Equal(t, "Total Revenue: Rs 5400.00, Payments: 4, Unique Members: 3", result.Summary)

	require.Len(t, result.Payments, 4)
	first := result.Payments[0]
	assert.Equal(t, "1001", first.UserID)
	assert.Equal(t, "Full Month", first.Period)
	assert.Equal(t, "2024-06-10", first.PaymentDate)
	assert.Equal(t, "Gym", first.SportCategory)

	periods := []string{result.Payments[1].Period, result.Payments[2].Period}
	assert.ElementsMatch(t, []string{"first_half", "second_half"}, periods)
}

func TestPaymentReport_IncludesDeactivatedMembers(t *testing.T) {
	env := setupTestEnvironment(t)
	seed(t, env)
	require.NoError(t, env.members.Deactivate(context.Background(), "1003"))

	result, err := env.reports.Generate(context.Background(), &report.ReportRequest{Kind: report.KindPlan15Day, Month: "2024-06"})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Len())
}

func TestExpiredReport_Boundary(t *testing.T) {
	// Given: expiries around the end of 2024-06
	env := setupTestEnvironment(t)
	env.createMember(t, memberFixture{"1001", "1000000000001", "Gym", "30-day", "2024-06-30", 2000})
	env.createMember(t, memberFixture{"1002", "1000000000002", "Gym", "30-day", "2024-07-01", 2000})
	env.createMember(t, memberFixture{"1003", "1000000000003", "Gym", "30-day", "2024-01-15", 2000})
	env.createMember(t, memberFixture{"1004", "1000000000004", "Gym", "30-day", "2024-03-01", 2000})
	require.NoError(t, env.members.Deactivate(context.Background(), "1004"))
	env.pay(t, "1003", 2000, "2024-01", "30-day")

	// When
	result, err := env.reports.Generate(context.Background(), &report.ReportRequest{Kind: report.KindExpiredMembers, Month: "2024-06"})

	// Then: strictly before 2024-07-01 and active only
	require.NoError(t, err)
	require.Len(t, result.Expired, 2)
	assert.Equal(t, "1003", result.Expired[0].UserID)
	assert.Equal(t, "2024-06-10", result.Expired[0].LastPayment)
	assert.Equal(t, "1001", result.Expired[1].UserID)
	assert.Equal(t, "Never", result.Expired[1].LastPayment)
	assert.Equal(t, "2024-06-30", result.Expired[1].ExpiryDate)
	assert.Equal(t, "Expired Members: 2", result.Summary)
	assert.Zero(t, result.TotalRevenue)
}

func TestExpiredReport_DecemberRollsIntoNextYear(t *testing.T) {
	env := setupTestEnvironment(t)
	env.createMember(t, memberFixture{"1001", "1000000000001", "Gym", "30-day", "2024-12-31", 2000})
	env.createMember(t, memberFixture{"1002", "1000000000002", "Gym", "30-day", "2025-01-01", 2000})

	result, err := env.reports.ExpiredReport(context.Background(), "2024-12")

	require.NoError(t, err)
	require.Len(t, result.Expired, 1)
	assert.Equal(t, "1001", result.Expired[0].UserID)
}

func TestGenerate_InvalidRequest(t *testing.T) {
	env := setupTestEnvironment(t)

	testCases := []struct {
		name    string
		request report.ReportRequest
		kind    error
		field   string
	}{
		{name: "unknown kind", request: report.ReportRequest{Kind: "Weekly", Month: "2024-06"}, kind: report.ErrInvalidReport, field: "kind"},
		{name: "bad month", request: report.ReportRequest{Kind: report.KindAll, Month: "06-2024"}, kind: report.ErrValidation, field: "month"},
		{name: "missing month", request: report.ReportRequest{Kind: report.KindExpiredMembers}, kind: report.ErrValidation, field: "month"},
		{name: "unknown sport", request: report.ReportRequest{Kind: report.KindSportCategory, Month: "2024-06", Sport: "Cricket"}, kind: report.ErrInvalidReport, field: "sport"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.reports.Generate(context.Background(), &tc.request)

			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)

			var fieldErr *sharedError.FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tc.field, fieldErr.Field)
		})
	}
}

func TestAvailableMonths(t *testing.T) {
	env := setupTestEnvironment(t)
	seed(t, env)
	env.createMember(t, memberFixture{"1009", "1000000000009", "Gym", "30-day", "2024-12-31", 500})
	env.pay(t, "1009", 500, "2020-01", "30-day")

	months, err := env.reports.AvailableMonths(context.Background(), time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	// 25 months around now plus 2020-01; 2024-05 and 2024-06 are already in the window
	assert.Len(t, months, 26)
	assert.Equal(t, "2020-01", months[0])
	assert.Equal(t, "2023-06", months[1])
	assert.Equal(t, "2025-06", months[len(months)-1])
	assert.IsIncreasing(t, months)
}

func TestOverview(t *testing.T) {
	env := setupTestEnvironment(t)
	seed(t, env)
	env.createMember(t, memberFixture{"1004", "1000000000004", "Basketball", "30-day", "2024-12-31", 1500})
	require.NoError(t, env.members.Deactivate(context.Background(), "1003"))

	rows, err := env.reports.Overview(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1001", "1002", "1004"}, []string{rows[0].UserID, rows[1].UserID, rows[2].UserID})
	assert.Equal(t, "2024-06-10", rows[0].LastPayment)
	assert.Equal(t, "Never", rows[2].LastPayment)
	assert.Equal(t, 1500.0, rows[2].TotalFee)
}
