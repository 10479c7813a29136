package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/spigell/vk-tinder/internal/logger"
	"github.com/spigell/vk-tinder/internal/profile"
	"github.com/spigell/vk-tinder/internal/storage"
)

const maxAge = 150

func logReference(l *zap.Logger, me *profile.Profile) {
	l.Info("got reference profile",
		zap.String("profile", me.String()),
		zap.String("sex", me.Sex.String()),
		zap.String("city", me.City.Title),
		zap.String("music", logger.TruncateForLog(me.Music, maxLoggedInterests)),
		zap.String("books", logger.TruncateForLog(me.Books, maxLoggedInterests)),
		zap.Int("friends", me.Friends.Len()),
		zap.Int("groups", me.Groups.Len()),
	)
}

// prepareReference restores the saved offset and desired ages of the reference profile.
// Interactive runs may override the ages, an empty answer keeps the saved bound.
func prepareReference(ctx context.Context, store *storage.Storage, me *profile.Profile, config *Config, interactive bool) (*profile.Reference, error) {
	if err := store.InitRunState(ctx, me.ID, config.StartOffset); err != nil {
		return nil, err
	}

	state, err := store.RunState(ctx, me.ID)
	if err != nil {
		return nil, err
	}

	ref := profile.NewReference(me, config.PageSize)
	ref.Offset = state.Offset

	from, to := "", ""
	if interactive {
		if from, err = askAge("Desired age from", state.AgeFrom); err != nil {
			return nil, err
		}
		if to, err = askAge("Desired age to", state.AgeTo); err != nil {
			return nil, err
		}
	}

	ref.DesiredAge, err = desiredAge(from, to, state)
	if err != nil {
		return nil, err
	}

	return ref, nil
}

func askAge(label string, saved int) (string, error) {
	if saved > 0 {
		label = fmt.Sprintf("%s (empty keeps %d)", label, saved)
	}

	p := promptui.Prompt{
		Label:    label,
		Validate: validateAge,
	}

	return p.Run()
}

func validateAge(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	age, err := strconv.Atoi(input)
	if err != nil {
		return errors.New("age must be a number")
	}
	if age < 0 || age > maxAge {
		return fmt.Errorf("age must be between 0 and %d", maxAge)
	}

	return nil
}

// desiredAge builds the range from user input falling back to the saved state.
// Nil means no bounds at all, such a reference never gets age points.
func desiredAge(fromInput, toInput string, state *storage.RunState) (*profile.AgeRange, error) {
	from, err := ageOr(fromInput, state.AgeFrom)
	if err != nil {
		return nil, fmt.Errorf("desired age from: %w", err)
	}

	to, err := ageOr(toInput, state.AgeTo)
	if err != nil {
		return nil, fmt.Errorf("desired age to: %w", err)
	}

	if from == 0 && to == 0 {
		return nil, nil
	}

	return &profile.AgeRange{From: from, To: to}, nil
}

func ageOr(input string, saved int) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return saved, nil
	}

	if err := validateAge(input); err != nil {
		return 0, err
	}

	return strconv.Atoi(input)
}

// chooseMatch returns nil when the operator went back.
func chooseMatch(matches profile.Matches, label string) (*profile.Match, error) {
	if matches.Len() == 0 {
		return nil, errors.New("there are no matches to choose from")
	}

	items := append(matches.Lines(), PromptBack)
	choose := promptui.Select{
		Label: label,
		Items: items,
		Size:  len(items),
	}

	idx, _, err := choose.Run()
	if err != nil {
		return nil, err
	}

	if idx >= matches.Len() {
		return nil, nil
	}

	return &matches[idx], nil
}
