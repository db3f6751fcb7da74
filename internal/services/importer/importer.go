package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/UnknownOlympus/themis/internal/directory"
	"github.com/UnknownOlympus/themis/internal/lib/logger/sl"
	"github.com/UnknownOlympus/themis/internal/metrics"
	"github.com/UnknownOlympus/themis/internal/models"
	"github.com/UnknownOlympus/themis/internal/repository"
	"github.com/tamathecxder/randomail"
)

// StaffSource yields the rows of the external staff directory.
type StaffSource interface {
	FetchStaff(ctx context.Context) ([]directory.StaffMember, error)
}

// EmployeeCreator stores new employees, enforcing the registry rules.
type EmployeeCreator interface {
	Create(ctx context.Context, employee models.Employee) (models.Employee, error)
}

// Summary counts what happened to the directory rows of one run.
type Summary struct {
	Created int
	Skipped int
	Failed  int
}

type Importer struct {
	log     *slog.Logger
	source  StaffSource
	staff   EmployeeCreator
	status  repository.ImportStatusRepoIface
	metrics *metrics.Metrics
}

func NewImporter(
	log *slog.Logger,
	source StaffSource,
	staff EmployeeCreator,
	status repository.ImportStatusRepoIface,
	metrics *metrics.Metrics,
) *Importer {
	return &Importer{log: log, source: source, staff: staff, status: status, metrics: metrics}
}

func (i *Importer) initLogger(opn string) *slog.Logger {
	return i.log.With(
		slog.String("op", opn),
		slog.String("division", "importer"),
	)
}

// Run copies the staff directory into the registry. Rows the registry rejects as conflicting
// or invalid are skipped; any other failure stops the run.
func (i *Importer) Run(ctx context.Context) (Summary, error) {
	const opn = "Importer.Run"
	log := i.initLogger(opn)

	var summary Summary
	startTime := time.Now()

	members, err := i.source.FetchStaff(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to fetch staff directory: %w", err)
	}
	log.InfoContext(ctx, "staff directory fetched", "count", len(members))

	for _, member := range i.fixInvalidEmails(ctx, log, members) {
		firstName, lastName := SplitFullName(member.FullName)
		employee := models.NewEmployee(firstName, lastName, member.Email, member.Phone)

		_, err = i.staff.Create(ctx, employee)
		switch {
		case err == nil:
			summary.Created++
			i.metrics.ItemsImported.WithLabelValues("created").Inc()
		case errors.Is(err, models.ErrConflict), errors.Is(err, models.ErrInvalid):
			summary.Skipped++
			i.metrics.ItemsImported.WithLabelValues("skipped").Inc()
			log.DebugContext(ctx, "directory row skipped", "fullname", member.FullName, "reason", err.Error())
		default:
			summary.Failed++
			i.metrics.ItemsImported.WithLabelValues("failed").Inc()
			log.ErrorContext(ctx, "directory import aborted", "fullname", member.FullName, sl.Err(err))
			return summary, fmt.Errorf("failed to import '%s': %w", member.FullName, err)
		}
	}

	finishedAt := time.Now()
	if err = i.status.SaveLastImport(ctx, finishedAt); err != nil {
		return summary, fmt.Errorf("failed to record import time: %w", err)
	}
	i.metrics.LastSuccessfulImport.Set(float64(finishedAt.Unix()))
	i.metrics.ImportDuration.Observe(finishedAt.Sub(startTime).Seconds())

	log.InfoContext(ctx, "directory import completed",
		"created", summary.Created, "skipped", summary.Skipped, "duration", finishedAt.Sub(startTime).String())

	return summary, nil
}

// fixInvalidEmails replaces missing or malformed emails with generated placeholders.
func (i *Importer) fixInvalidEmails(
	ctx context.Context,
	log *slog.Logger,
	members []directory.StaffMember,
) []directory.StaffMember {
	var invalidCounter int
	fixed := make([]directory.StaffMember, 0, len(members))

	for _, member := range members {
		if !isValidEmail(member.Email) {
			log.DebugContext(ctx, "Employee has no valid email, it will be replaced with temporary random email.",
				"fullname", member.FullName, "email", member.Email)
			member.Email = randomail.GenerateRandomEmail()
			invalidCounter++
			i.metrics.EmailsFixed.Inc()
		}
		fixed = append(fixed, member)
	}

	if invalidCounter != 0 {
		log.WarnContext(ctx,
			"Number of employees with no or invalid email addresses. For more information, enable debug mode",
			"value", invalidCounter)
	}

	return fixed
}

// SplitFullName takes the first word as the first name and the rest as the last name.
func SplitFullName(fullName string) (string, string) {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func isValidEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
