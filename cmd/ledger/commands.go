package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kchsoft/gym-ledger/internal/bootstrap"
	"github.com/kchsoft/gym-ledger/internal/member"
	"github.com/kchsoft/gym-ledger/internal/payment"
	"github.com/kchsoft/gym-ledger/internal/report"
	sharedError "github.com/kchsoft/gym-ledger/internal/shared/error"
)

// commandError is a bad invocation; it is reported without an error log
type commandError struct {
	msg string
}

func (e *commandError) Error() string {
	return e.msg
}

func usageError(format string, args ...any) error {
	return &commandError{msg: fmt.Sprintf(format, args...)}
}

var stdout io.Writer = os.Stdout

func dispatch(ctx context.Context, ledger *bootstrap.Ledger, args []string) error {
	name, rest := args[0], args[1:]

	switch name {
	case "member":
		return memberCommand(ctx, ledger, rest)
	case "pay":
		return payCommand(ctx, ledger, rest)
	case "history":
		return historyCommand(ctx, ledger, rest)
	case "report":
		return reportCommand(ctx, ledger, rest)
	case "months":
		months, err := ledger.Reports.AvailableMonths(ctx, time.Now())
		if err != nil {
			return err
		}
		return printJSON(months)
	case "overview":
		rows, err := ledger.Reports.Overview(ctx)
		if err != nil {
			return err
		}
		return printJSON(rows)
	case "reconcile":
		changed, err := ledger.Members.ReconcileFees(ctx)
		if err != nil {
			return err
		}
		return printJSON(map[string]int{"reconciled": changed})
	case "health":
		status := ledger.Health.Check(ctx)
		if err := printJSON(status); err != nil {
			return err
		}
		if !status.Healthy() {
			return errors.New(status.Database.Error)
		}
		return nil
	default:
		return usageError("unknown command %q", name)
	}
}

func memberCommand(ctx context.Context, ledger *bootstrap.Ledger, args []string) error {
	if len(args) == 0 {
		return usageError("member: subcommand is required (add|update|deactivate|show|list)")
	}
	name, rest := args[0], args[1:]

	switch name {
	case "add":
		fs := flag.NewFlagSet("member add", flag.ContinueOnError)
		fields := bindMemberFields(fs)
		photoPath := fs.String("photo", "", "jpeg/png photo file")
		if err := fs.Parse(rest); err != nil {
			return usageError("member add: %v", err)
		}

		upload, err := readPhoto(*photoPath)
		if err != nil {
			return err
		}
		resp, err := ledger.Members.Create(ctx, &member.CreateMemberRequest{MemberFields: *fields, Photo: upload})
		if err != nil {
			return err
		}
		return printJSON(resp)

	case "update":
		fs := flag.NewFlagSet("member update", flag.ContinueOnError)
		original := fs.String("original", "", "user_id of the member being edited")
		fields := bindMemberFields(fs)
		photoPath := fs.String("photo", "", "replacement jpeg/png photo file")
		if err := fs.Parse(rest); err != nil {
			return usageError("member update: %v", err)
		}
		if *original == "" {
			*original = fields.UserID
		}

		upload, err := readPhoto(*photoPath)
		if err != nil {
			return err
		}
		resp, err := ledger.Members.Update(ctx, &member.UpdateMemberRequest{
			OriginalUserID: *original,
			MemberFields:   *fields,
			Photo:          upload,
		})
		if err != nil {
			return err
		}
		return printJSON(resp)

	case "deactivate":
		fs := flag.NewFlagSet("member deactivate", flag.ContinueOnError)
		userID := fs.String("user-id", "", "member user_id")
		if err := fs.Parse(rest); err != nil {
			return usageError("member deactivate: %v", err)
		}
		if err := ledger.Members.Deactivate(ctx, *userID); err != nil {
			return err
		}
		return printJSON(map[string]string{"deactivated": *userID})

	case "show":
		fs := flag.NewFlagSet("member show", flag.ContinueOnError)
		userID := fs.String("user-id", "", "exact user_id")
		cnic := fs.String("cnic", "", "exact cnic")
		search := fs.String("search", "", "user_id or cnic")
		if err := fs.Parse(rest); err != nil {
			return usageError("member show: %v", err)
		}

		switch {
		case *search != "":
			found, err := ledger.Members.Search(ctx, *search)
			if err != nil {
				return err
			}
			return printJSON(found)
		case *cnic != "":
			resp, err := ledger.Members.FindActiveByCNIC(ctx, *cnic)
			if err != nil {
				return err
			}
			return printJSON(resp)
		default:
			resp, err := ledger.Members.FindActive(ctx, *userID)
			if err != nil {
				return err
			}
			return printJSON(resp)
		}

	case "list":
		members, err := ledger.Members.ListActive(ctx)
		if err != nil {
			return err
		}
		return printJSON(members)

	default:
		return usageError("member: unknown subcommand %q", name)
	}
}

func bindMemberFields(fs *flag.FlagSet) *member.MemberFields {
	f := &member.MemberFields{}
	fs.StringVar(&f.UserID, "user-id", "", "numeric user_id")
	fs.StringVar(&f.Name, "name", "", "member name")
	fs.StringVar(&f.Contact, "contact", "", "10-15 digit phone")
	fs.StringVar(&f.CNIC, "cnic", "", "13 digit CNIC")
	fs.StringVar(&f.Location, "location", "", "optional location")
	fs.StringVar(&f.Designation, "designation", "", "optional designation")
	fs.StringVar(&f.JoinDate, "join", time.Now().Format("2006-01-02"), "join date YYYY-MM-DD")
	fs.StringVar(&f.ExpiryDate, "expiry", "", "expiry date YYYY-MM-DD")
	fs.StringVar(&f.SportCategory, "sport", "Gym", "Gym|Basketball|Long Tennis|Squash")
	fs.StringVar(&f.MembershipType, "plan", "30-day", "15-day|30-day")
	fs.BoolVar(&f.HasTreadmill, "treadmill", false, "treadmill add-on")
	fs.Float64Var(&f.BaseFee, "base-fee", 0, "base fee")
	return f
}

func readPhoto(path string) (*member.PhotoUpload, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, usageError("read photo %s: %v", path, err)
	}
	return &member.PhotoUpload{Data: data}, nil
}

func payCommand(ctx context.Context, ledger *bootstrap.Ledger, args []string) error {
	fs := flag.NewFlagSet("pay", flag.ContinueOnError)
	request := &payment.RecordPaymentRequest{}
	fs.StringVar(&request.UserID, "user-id", "", "selected member user_id")
	fs.Float64Var(&request.Amount, "amount", 0, "amount, must equal the member's total fee")
	fs.StringVar(&request.Month, "month", time.Now().Format("2006-01"), "billing month YYYY-MM")
	fs.StringVar(&request.MembershipType, "plan", "", "15-day|30-day")
	if err := fs.Parse(args); err != nil {
		return usageError("pay: %v", err)
	}

	resp, err := ledger.Payments.RecordPayment(ctx, request)
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func historyCommand(ctx context.Context, ledger *bootstrap.Ledger, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	userID := fs.String("user-id", "", "member user_id (inactive members included)")
	if err := fs.Parse(args); err != nil {
		return usageError("history: %v", err)
	}

	history, err := ledger.Payments.PaymentHistory(ctx, *userID)
	if err != nil {
		return err
	}
	return printJSON(history)
}

func reportCommand(ctx context.Context, ledger *bootstrap.Ledger, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	request := &report.ReportRequest{}
	kind := fs.String("kind", string(report.KindAll), "All|30-Day Plan|15-Day Plan|Sport Category|Expired Members")
	fs.StringVar(&request.Month, "month", time.Now().Format("2006-01"), "billing month YYYY-MM")
	fs.StringVar(&request.Sport, "sport", report.AllSports, "sport category for the Sport Category kind")
	if err := fs.Parse(args); err != nil {
		return usageError("report: %v", err)
	}
	request.Kind = report.Kind(*kind)

	result, err := ledger.Reports.Generate(ctx, request)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printError renders err through the error registry so callers see the user-facing message
func printError(err error) {
	var cmdErr *commandError
	if errors.As(err, &cmdErr) {
		fmt.Fprintln(os.Stderr, "ledger:", cmdErr.msg)
		return
	}

	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	_ = enc.Encode(map[string]any{"error": sharedError.Resolve(err)})
}
