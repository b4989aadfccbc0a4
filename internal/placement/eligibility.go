package placement

import (
	"context"
	"fmt"
	"time"

	"sgva/placement-service/internal/calendar"
)

// CreateApplication opens a new application after running the eligibility
// checks. Checks run in order and short-circuit on the first failure:
//
//  1. company open with free seats
//  2. trainee AVAILABLE
//  3. no prior application for this (trainee, company) pair
//  4. no other active application anywhere
//  5. cooldown: at least the statutory window of business days since the
//     trainee's most recent application
//
// On success the application is inserted at PENDING, the trainee moves to
// SELECTION_PROCESS with the company pinned, and the first history entry is
// appended — all in one transaction.
func (s *Service) CreateApplication(ctx context.Context, traineeID, companyID string, actor Actor) (*Application, error) {
	now := s.now()
	var app *Application

	err := s.store.InTx(ctx, func(tx Tx) error {
		company, err := tx.GetCompany(ctx, companyID)
		if err != nil {
			return err
		}
		trainee, err := tx.GetTrainee(ctx, traineeID)
		if err != nil {
			return err
		}

		if err := s.checkEligibility(ctx, tx, trainee, company, now); err != nil {
			return err
		}

		app = &Application{
			TraineeID: trainee.ID,
			CompanyID: company.ID,
			State:     AppPending,
			AppliedAt: now,
		}
		if err := tx.InsertApplication(ctx, app); err != nil {
			return err
		}

		trainee.State = TraineeSelection
		trainee.CurrentCompanyID = &app.CompanyID
		trainee.LastActivityAt = now
		if err := tx.UpdateTrainee(ctx, trainee); err != nil {
			return err
		}

		return tx.AppendHistory(ctx, &HistoryEntry{
			ApplicationID: app.ID,
			PreviousState: "",
			NewState:      AppPending,
			ActorID:       actor.historyActor(),
			Comment:       "application submitted",
			ChangedAt:     now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, chanApplicationSubmitted, map[string]string{
		"applicationId": app.ID,
		"traineeId":     app.TraineeID,
		"companyId":     app.CompanyID,
	})
	return app, nil
}

// checkEligibility runs the guard checks against freshly-read rows inside
// the caller's transaction.
func (s *Service) checkEligibility(ctx context.Context, tx Tx, trainee *Trainee, company *Company, now time.Time) error {
	contracted, err := tx.CountContracted(ctx, company.ID)
	if err != nil {
		return err
	}
	if company.State != CompanyAvailable || company.AvailableSeats(contracted) == 0 {
		return &ValidationError{
			Code: CodeCompanyNotAccepting,
			Msg:  fmt.Sprintf("company %s is not accepting applications", company.Name),
		}
	}

	if trainee.State != TraineeAvailable {
		return &ValidationError{
			Code: CodeTraineeNotEligible,
			Msg:  fmt.Sprintf("trainee is %s and cannot apply", trainee.State),
		}
	}

	prior, err := tx.ListApplicationsByTrainee(ctx, trainee.ID)
	if err != nil {
		return err
	}

	for _, a := range prior {
		if a.CompanyID == company.ID {
			return &ValidationError{
				Code: CodeDuplicateApplication,
				Msg:  fmt.Sprintf("trainee has already applied to %s", company.Name),
			}
		}
	}

	for _, a := range prior {
		if IsActiveState(a.State) {
			name := a.CompanyID
			if other, err := tx.GetCompany(ctx, a.CompanyID); err == nil {
				name = other.Name
			}
			return &ValidationError{
				Code: CodeConcurrentApplication,
				Msg:  fmt.Sprintf("an active application with %s already exists; only one company at a time", name),
			}
		}
	}

	// prior is newest first, so prior[0] is the most recent application.
	if len(prior) > 0 {
		elapsed := calendar.BusinessDaysBetween(prior[0].AppliedAt, now)
		if elapsed < s.window {
			return &ValidationError{
				Code: CodeCooldownActive,
				Msg:  fmt.Sprintf("only one application every %d business days is allowed", s.window),
			}
		}
	}

	return nil
}
