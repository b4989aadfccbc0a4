package placement

import (
	"context"
	"fmt"
)

// Transition applies an action to an application. It is the single
// authorized mutator of application and trainee state: it re-reads both
// records inside the transaction, validates the edge against the transition
// table, mirrors the trainee state, and appends exactly one history entry
// per state change.
//
// After every action it runs the convergence post-condition: once both
// parties have responded and the application is neither CONTRACTED nor
// AVAILABLE, the application is forced to AVAILABLE with a second, automatic
// history entry, and the trainee returns to AVAILABLE with no pinned
// company. A single logical action can therefore produce two history rows.
//
// Repeating a terminal action (e.g. "hire" on a CONTRACTED application) is
// rejected with an INVALID_TRANSITION validation error, never silently
// ignored: the transition table has no outgoing edges from terminal states.
func (s *Service) Transition(ctx context.Context, applicationID string, action Action, actor Actor, comment string) (*Application, error) {
	now := s.now()
	var app *Application
	var events []map[string]string

	err := s.store.InTx(ctx, func(tx Tx) error {
		var err error
		app, err = tx.GetApplication(ctx, applicationID)
		if err != nil {
			return err
		}
		trainee, err := tx.GetTrainee(ctx, app.TraineeID)
		if err != nil {
			return err
		}

		if action == ActionAddNote {
			if err := recordNote(app, actor, comment); err != nil {
				return err
			}
			if err := tx.UpdateApplication(ctx, app); err != nil {
				return err
			}
			// No state change: history records previous == new.
			err = tx.AppendHistory(ctx, &HistoryEntry{
				ApplicationID: app.ID,
				PreviousState: app.State,
				NewState:      app.State,
				ActorID:       actor.historyActor(),
				Comment:       fmt.Sprintf("%s added observation: %s", actor.Party, comment),
				ChangedAt:     now,
			})
			if err != nil {
				return err
			}
		} else {
			to, ok := NextState(action, app.State)
			if !ok {
				return errInvalidTransition(action, app.State)
			}
			from := app.State

			app.State = to
			app.StateUpdatedAt = &now
			if action != ActionExpire {
				// select/reject/hire are company actions.
				app.CompanyResponded = true
				if comment != "" {
					app.CompanyNote = comment
				}
			}
			if err := tx.UpdateApplication(ctx, app); err != nil {
				return err
			}

			trainee.State = traineeStateFor[to]
			switch to {
			case AppSelectionOpen, AppContracted:
				trainee.CurrentCompanyID = &app.CompanyID
			case AppContractNotRegistered:
				trainee.CurrentCompanyID = nil
			}
			trainee.LastActivityAt = now
			if err := tx.UpdateTrainee(ctx, trainee); err != nil {
				return err
			}

			err = tx.AppendHistory(ctx, &HistoryEntry{
				ApplicationID: app.ID,
				PreviousState: from,
				NewState:      to,
				ActorID:       actor.historyActor(),
				Comment:       transitionComment(action, actor, comment),
				ChangedAt:     now,
			})
			if err != nil {
				return err
			}
			events = append(events, transitionEvent(app, from, to))
		}

		// Convergence post-condition.
		if app.BothResponded() && app.State != AppContracted && app.State != AppAvailable {
			from := app.State

			app.State = AppAvailable
			app.StateUpdatedAt = &now
			if err := tx.UpdateApplication(ctx, app); err != nil {
				return err
			}

			trainee.State = TraineeAvailable
			trainee.CurrentCompanyID = nil
			trainee.LastActivityAt = now
			if err := tx.UpdateTrainee(ctx, trainee); err != nil {
				return err
			}

			err = tx.AppendHistory(ctx, &HistoryEntry{
				ApplicationID: app.ID,
				PreviousState: from,
				NewState:      AppAvailable,
				ActorID:       nil,
				Comment:       "both parties responded",
				ChangedAt:     now,
			})
			if err != nil {
				return err
			}
			events = append(events, transitionEvent(app, from, AppAvailable))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ev := range events {
		s.publish(ctx, chanApplicationTransition, ev)
	}
	return app, nil
}

// recordNote applies an observation-only action: it flips the responding
// party's flag and stores the note, without touching state.
func recordNote(app *Application, actor Actor, comment string) error {
	if comment == "" {
		return &ValidationError{Code: CodeInvalidInput, Msg: "observation text is required"}
	}
	switch actor.Party {
	case PartyTrainee:
		app.TraineeNote = comment
		app.TraineeResponded = true
	case PartyCompany:
		app.CompanyNote = comment
		app.CompanyResponded = true
	default:
		return &ValidationError{Code: CodeInvalidInput, Msg: "add_note requires a trainee or company actor"}
	}
	return nil
}

// transitionComment builds the audit comment for a state-changing action.
// Automated callers pass the full comment; company actions get the original
// "company <action>[: observation]" form.
func transitionComment(action Action, actor Actor, comment string) string {
	if actor.IsSystem() && comment != "" {
		return comment
	}
	c := fmt.Sprintf("company %s", action)
	if comment != "" {
		c += ": " + comment
	}
	return c
}

func transitionEvent(app *Application, from, to ApplicationState) map[string]string {
	return map[string]string{
		"applicationId": app.ID,
		"traineeId":     app.TraineeID,
		"companyId":     app.CompanyID,
		"from":          string(from),
		"to":            string(to),
	}
}
