package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/example/campsched/internal/captcha"
)

func init() {
	Register("interpark_anseong", func(env Env) SiteAdapter { return &Interpark{env: env} })
}

// Interpark drives the Interpark ticket flow for the Anseong campground.
// Selectors drift over time; every locator comes from criteria.selectors so
// the adapter survives minor DOM changes without a code release.
type Interpark struct {
	env Env
}

const (
	loginFormWait  = 15 * time.Second
	loginRetryWait = 10 * time.Second
	loginPoll      = 200 * time.Millisecond
)

func (a *Interpark) Login(ctx context.Context) error {
	page := a.env.Page
	if err := page.Navigate(ctx, a.env.BaseURL); err != nil {
		return err
	}
	a.closeOptionalPopups(ctx)

	sel := a.env.Selectors()
	if buttons := sel.Candidates("login_button"); len(buttons) > 0 {
		clickFirst(ctx, page, buttons)
		sleep(ctx, 600*time.Millisecond)
	}

	username := a.env.Credentials["username"]
	password := a.env.Credentials["password"]
	if username == "" || password == "" {
		return configErr("missing credentials.username or credentials.password")
	}

	userSels := sel.Candidates("username_input")
	passSels := sel.Candidates("password_input")
	submitSels := sel.Candidates("submit_login_button")
	if len(userSels) == 0 || len(passSels) == 0 || len(submitSels) == 0 {
		return a.manualLoginIfEnabled(ctx, "missing login selectors in criteria.selectors")
	}

	found := waitAny(ctx, page, userSels, loginFormWait, loginPoll)
	if !found {
		// some deployments park the login form on a separate URL
		if loginURL := a.env.Criteria.String("login_url"); loginURL != "" {
			if err := page.Navigate(ctx, loginURL); err != nil {
				return err
			}
			found = waitAny(ctx, page, userSels, loginRetryWait, loginPoll)
		}
	}
	if !found {
		dumpDebug(ctx, page, "login_not_found")
		return a.manualLoginIfEnabled(ctx, "login username input not found")
	}

	if !fillFirst(ctx, page, userSels, username) {
		dumpDebug(ctx, page, "login_user_fill_failed")
		return a.manualLoginIfEnabled(ctx, "failed to fill username input")
	}
	if !fillFirst(ctx, page, passSels, password) {
		dumpDebug(ctx, page, "login_pass_fill_failed")
		return a.manualLoginIfEnabled(ctx, "failed to fill password input")
	}
	if !clickFirst(ctx, page, submitSels) {
		dumpDebug(ctx, page, "login_submit_failed")
		return a.manualLoginIfEnabled(ctx, "failed to click submit login button")
	}

	sleep(ctx, time.Second)
	return nil
}

func (a *Interpark) SearchSlots(ctx context.Context) ([]SlotResult, error) {
	a.closeOptionalPopups(ctx)
	if err := a.applyScheduleFilters(ctx); err != nil {
		return nil, err
	}
	if err := a.moveToBookingPage(ctx); err != nil {
		return nil, err
	}
	if err := a.handleAntiBotText(ctx); err != nil {
		return nil, err
	}
	a.closeOptionalPopups(ctx)

	siteName, err := a.selectDeckSite(ctx)
	if err != nil {
		return nil, err
	}
	if siteName == "" {
		return nil, nil
	}

	nights := a.env.Criteria.Int("nights", 1)
	guests := a.env.Criteria.Int("guests", 1)
	checkIn := a.env.Criteria.String("check_in")
	if checkIn == "" {
		checkIn = time.Now().Format("2006-01-02")
	}
	zone := a.env.Criteria.String("preferred_zone")
	if zone == "" {
		zone = "DECK"
	}
	if guests < 1 {
		guests = 1
	}

	return []SlotResult{{
		SlotID:   fmt.Sprintf("interpark-%s-%s", checkIn, siteName),
		Zone:     zone,
		SiteName: siteName,
		CheckIn:  checkIn,
		Nights:   nights,
		Capacity: guests,
	}}, nil
}

func (a *Interpark) BookSlot(ctx context.Context, slot SlotResult) (bool, error) {
	if err := a.selectDiscount(ctx); err != nil {
		return false, err
	}
	if err := a.fillPersonalInfo(ctx); err != nil {
		return false, err
	}
	if err := a.selectPaymentBankTransfer(ctx); err != nil {
		return false, err
	}
	if err := a.agreeAndSubmit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// closeOptionalPopups dismisses whatever promo/notice layers are up. Purely
// cosmetic: every failure is swallowed.
func (a *Interpark) closeOptionalPopups(ctx context.Context) {
	page := a.env.Page
	for _, sel := range a.env.Selectors().Candidates("popup_close_buttons") {
		ok, err := page.Exists(ctx, sel)
		if err != nil || !ok {
			continue
		}
		if err := page.Click(ctx, sel); err == nil {
			sleep(ctx, 150*time.Millisecond)
		}
	}
}

func (a *Interpark) applyScheduleFilters(ctx context.Context) error {
	page := a.env.Page
	sel := a.env.Selectors()
	crit := a.env.Criteria

	if checkIn, input := crit.String("check_in"), sel.One("check_in_input"); checkIn != "" && input != "" {
		if err := page.Fill(ctx, input, checkIn); err != nil {
			return err
		}
	}
	if nights, input := crit.String("nights"), sel.One("nights_select"); nights != "" && input != "" {
		if err := page.SelectOption(ctx, input, nights); err != nil {
			return err
		}
	}
	if guests, input := crit.String("guests"), sel.One("guests_select"); guests != "" && input != "" {
		if err := page.SelectOption(ctx, input, guests); err != nil {
			return err
		}
	}
	if search := sel.One("search_button"); search != "" {
		if err := page.Click(ctx, search); err != nil {
			return err
		}
	}
	return nil
}

func (a *Interpark) moveToBookingPage(ctx context.Context) error {
	button := a.env.Selectors().One("booking_page_button")
	if button == "" {
		return nil
	}
	if err := a.env.Page.Click(ctx, button); err != nil {
		return err
	}
	sleep(ctx, 500*time.Millisecond)
	return nil
}

// handleAntiBotText solves the type-the-characters challenge when the
// booking page shows one. An empty solved code is a hard failure.
func (a *Interpark) handleAntiBotText(ctx context.Context) error {
	sel := a.env.Selectors()
	input := sel.One("anti_bot_input")
	if input == "" {
		return nil
	}

	code, err := a.env.solver().Solve(ctx, "[ANTI-BOT] enter the characters shown on screen: ")
	if err != nil {
		return err
	}
	if code == "" {
		return fmt.Errorf("captcha code is empty")
	}

	if err := a.env.Page.Fill(ctx, input, code); err != nil {
		return err
	}
	if submit := sel.One("anti_bot_submit"); submit != "" {
		return a.env.Page.Click(ctx, submit)
	}
	return nil
}

// selectDeckSite walks the site rows and clicks the first one that matches
// criteria.preferred_sites (or the first row when no preference is set).
// Returns "" when no row could be selected.
func (a *Interpark) selectDeckSite(ctx context.Context) (string, error) {
	page := a.env.Page
	sel := a.env.Selectors()

	itemSel := sel.One("site_item")
	nameSel := sel.One("site_name")
	clickSel := sel.One("site_select_button")
	if itemSel == "" || clickSel == "" {
		return "", configErr("missing site selectors in criteria.selectors")
	}
	preferred := a.env.Criteria.StringList("preferred_sites")

	count, err := page.Count(ctx, itemSel)
	if err != nil {
		return "", err
	}
	var names []string
	if nameSel != "" {
		names, err = page.Texts(ctx, itemSel+" "+nameSel)
		if err != nil {
			return "", err
		}
	}

	for idx := 0; idx < count; idx++ {
		name := ""
		if idx < len(names) {
			name = names[idx]
		}
		if len(preferred) > 0 && name != "" && !contains(preferred, name) {
			continue
		}
		if err := page.ClickNth(ctx, itemSel+" "+clickSel, idx); err != nil {
			return "", err
		}
		if name == "" {
			name = fmt.Sprintf("site-%d", idx+1)
		}
		return name, nil
	}
	return "", nil
}

func (a *Interpark) selectDiscount(ctx context.Context) error {
	discount := a.env.Criteria.String("discount_value")
	input := a.env.Selectors().One("discount_select")
	if discount == "" || input == "" {
		return nil
	}
	return a.env.Page.SelectOption(ctx, input, discount)
}

func (a *Interpark) fillPersonalInfo(ctx context.Context) error {
	sel := a.env.Selectors()
	personal := a.env.Criteria.Sub("personal_info")

	if input, birth := sel.One("birth_input"), personal.String("birth"); input != "" && birth != "" {
		if err := a.env.Page.Fill(ctx, input, birth); err != nil {
			return err
		}
	}
	if input, car := sel.One("car_number_input"), personal.String("car_number"); input != "" && car != "" {
		if err := a.env.Page.Fill(ctx, input, car); err != nil {
			return err
		}
	}
	return nil
}

func (a *Interpark) selectPaymentBankTransfer(ctx context.Context) error {
	sel := a.env.Selectors()
	if radio := sel.One("bank_transfer_radio"); radio != "" {
		if err := a.env.Page.Click(ctx, radio); err != nil {
			return err
		}
	}
	if input, bank := sel.One("bank_select"), a.env.Criteria.String("bank_code"); input != "" && bank != "" {
		return a.env.Page.SelectOption(ctx, input, bank)
	}
	return nil
}

func (a *Interpark) agreeAndSubmit(ctx context.Context) error {
	page := a.env.Page
	sel := a.env.Selectors()

	for _, boxSel := range sel.Candidates("agree_checkboxes") {
		if ok, err := page.Exists(ctx, boxSel); err == nil && ok {
			if err := page.Check(ctx, boxSel); err != nil {
				return err
			}
		}
	}

	submit := sel.One("submit_reservation_button")
	if submit == "" {
		return configErr("missing submit_reservation_button selector")
	}
	return page.Click(ctx, submit)
}

// manualLoginIfEnabled pauses for an operator-driven login when the job opts
// in. Only works with a visible browser; the wait runs on its own goroutine
// so other jobs keep their schedule.
func (a *Interpark) manualLoginIfEnabled(ctx context.Context, reason string) error {
	if !a.env.Criteria.Bool("manual_login_fallback") {
		return configErr(reason)
	}
	if a.env.Runtime.Headless {
		return configErr(reason + " / manual_login_fallback requires HEADLESS=false")
	}

	prompt := fmt.Sprintf("[LOGIN] %s\n[LOGIN] finish logging in inside the browser, then press Enter: ", reason)
	manual := &captcha.Manual{Deadline: a.env.Runtime.CaptchaInputTimeout}
	if _, err := manual.Solve(ctx, prompt); err != nil {
		return err
	}
	sleep(ctx, 500*time.Millisecond)
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
