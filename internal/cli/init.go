package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anfask/quitlog/internal/models"
	"github.com/anfask/quitlog/internal/reconcile"
)

type InitCmd struct {
	Username   string  `help:"Create a user with this name right away."`
	Cigarettes int     `help:"Cigarettes smoked per day before quitting." default:"0"`
	Price      float64 `help:"Price per cigarette." default:"0"`
	QuitDate   string  `help:"Quit date (YYYY-MM-DD). Defaults to today."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized quitlog storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Username == "" {
		return nil
	}

	if c.Cigarettes <= 0 || c.Price <= 0 {
		return fmt.Errorf("--cigarettes and --price must be positive when creating a user")
	}

	quitDate := c.QuitDate
	if quitDate == "" {
		quitDate = reconcile.Today()
	}
	if _, err := reconcile.ParseDate(quitDate); err != nil {
		return err
	}
	if quitDate > reconcile.Today() {
		return fmt.Errorf("quit date cannot be in the future")
	}

	if err := ctx.Store.Load(); err != nil {
		return err
	}

	user := models.User{
		ID:               uuid.New().String(),
		Username:         c.Username,
		RegistrationDate: quitDate,
		DailyCigarettes:  c.Cigarettes,
		CigarettePrice:   c.Price,
		DailyRecords:     map[string]models.DailyRecord{},
		CreatedAt:        time.Now(),
	}
	if err := ctx.Store.CreateUser(user); err != nil {
		return err
	}

	fmt.Printf("Created user %q with quit date %s\n", c.Username, quitDate)
	return nil
}
