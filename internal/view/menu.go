package view

import (
	"fmt"
	"strconv"

	"ffbot/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// Callback payloads of static buttons
const (
	CbStart              = "start"
	CbRegistration       = "registration"
	CbAddTransaction     = "add_transaction"
	CbLookBase           = "look_base"
	CbCreateGroup        = "create_group"
	CbDeleteGroup        = "delete_group"
	CbChoosePeriod       = "choose_period"
	CbSettings           = "settings"
	CbDescription        = "general_description"
	CbExportExcel        = "export_excel"
	CbChooseSpace        = "choose_space"
	CbLinkedAccounts     = "linked_accounts"
	CbLinkedAdd          = "linked_accounts_add"
	CbLinkedDelete       = "linked_accounts_delete"
	CbLinkedInstruction  = "linked_accounts_instruction"
	CbJointChat          = "joint_chat"
	CbJointChatDelete    = "joint_chat_delete"
	CbJointChatGuide     = "joint_chat_instruction"
	CbDeleteAccount      = "registration_delete"
	CbDeleteAccountOK    = "registration_delete_accept"
	CbDeleteAccountAbort = "registration_delete_cancel"
	CbArchive            = "all_periods"
)

// Prefixes of dynamic payloads
const (
	PrefixPeriod       = "period_"
	PrefixSpace        = "choose_space_"
	PrefixGroup        = "group_id_"
	PrefixArchiveYear  = "all_periods_year_"
	PrefixArchiveMonth = "all_periods_month_"
)

// Button is an inline button whose callback data is Data as is
type Button struct {
	Text string
	Data string
}

// Menu is an inline keyboard as rows of buttons
type Menu [][]Button

var (
	btnHome     = Button{Text: "На главную", Data: CbStart}
	btnSettings = Button{Text: "В настройки", Data: CbSettings}
)

// Grid lays buttons out in rows of the given sizes. The last size repeats
// for the remaining buttons; no sizes means one button per row.
func Grid(buttons []Button, sizes ...int) Menu {
	if len(sizes) == 0 {
		sizes = []int{1}
	}
	var menu Menu
	for i, row := 0, 0; i < len(buttons); row++ {
		size := sizes[len(sizes)-1]
		if row < len(sizes) {
			size = sizes[row]
		}
		if size < 1 {
			size = 1
		}
		end := i + size
		if end > len(buttons) {
			end = len(buttons)
		}
		menu = append(menu, buttons[i:end])
		i = end
	}
	return menu
}

// WithRow returns the menu with one more row appended
func (m Menu) WithRow(buttons ...Button) Menu {
	out := make(Menu, 0, len(m)+1)
	out = append(out, m...)
	return append(out, buttons)
}

// WithHome appends the shared "back to main" row
func (m Menu) WithHome() Menu {
	return m.WithRow(btnHome)
}

// Markup converts the menu to telegram inline markup
func (m Menu) Markup() *tele.ReplyMarkup {
	rows := make([][]tele.InlineButton, 0, len(m))
	for _, r := range m {
		row := make([]tele.InlineButton, 0, len(r))
		for _, b := range r {
			row = append(row, tele.InlineButton{Text: b.Text, Data: b.Data})
		}
		rows = append(rows, row)
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}

// Payloads lists every callback payload of the menu in order
func (m Menu) Payloads() []string {
	var out []string
	for _, r := range m {
		for _, b := range r {
			out = append(out, b.Data)
		}
	}
	return out
}

func MainMenu() Menu {
	return Menu{
		{{"Добавить запись", CbAddTransaction}, {"Просмотр", CbLookBase}},
		{{"Создать статью", CbCreateGroup}, {"Удалить статью", CbDeleteGroup}},
		{{"Выбрать период", CbChoosePeriod}, {"Настройки", CbSettings}},
		{{"Описание", CbDescription}, {"Excel", CbExportExcel}},
	}
}

func GoToMain() Menu {
	return Menu{}.WithHome()
}

func ChooseTypeMenu() Menu {
	return Menu{
		{{"Доход", string(domain.Income)}, {"Расход", string(domain.Expense)}},
	}.WithHome()
}

// GroupsMenu lists line items one per row
func GroupsMenu(groups []domain.Group) Menu {
	buttons := make([]Button, 0, len(groups))
	for _, g := range groups {
		buttons = append(buttons, Button{
			Text: g.Name,
			Data: PrefixGroup + strconv.FormatInt(g.ID, 10),
		})
	}
	return Grid(buttons).WithHome()
}

func RegistrationMenu() Menu {
	return Menu{{{"Регистрация", CbRegistration}}}
}

func ConfirmDeleteMenu() Menu {
	return Menu{{{"Подтвердить", CbDeleteAccountOK}, {"Отменить", CbDeleteAccountAbort}}}
}

// PeriodMenu offers the month of today with two months either side,
// followed by the archive entry.
func PeriodMenu(today domain.Period) Menu {
	buttons := make([]Button, 0, 5)
	for offset := -2; offset <= 2; offset++ {
		p := today.AddMonths(offset)
		buttons = append(buttons, Button{Text: p.String(), Data: PrefixPeriod + p.String()})
	}
	return Grid(buttons, 2, 1, 2).
		WithRow(Button{Text: "Архив", Data: CbArchive}).
		WithHome()
}

// YearsMenu lists archive years two per row
func YearsMenu(years []int) Menu {
	buttons := make([]Button, 0, len(years))
	for _, y := range years {
		buttons = append(buttons, Button{
			Text: strconv.Itoa(y),
			Data: PrefixArchiveYear + strconv.Itoa(y),
		})
	}
	return Grid(buttons, 2).WithHome()
}

// MonthsMenu lists archive months in two rows
func MonthsMenu(months []int) Menu {
	buttons := make([]Button, 0, len(months))
	for _, m := range months {
		buttons = append(buttons, Button{
			Text: domain.MonthName(m),
			Data: PrefixArchiveMonth + strconv.Itoa(m),
		})
	}
	return Grid(buttons, len(months)/2).WithHome()
}

func SettingsMenu() Menu {
	return Menu{
		{{"Выбрать базу", CbChooseSpace}, {"Общий доступ", CbLinkedAccounts}},
		{{"Подключить чат", CbJointChat}, {"Удалить акк", CbDeleteAccount}},
	}.WithHome()
}

func BackToSettings() Menu {
	return Menu{{btnSettings}}
}

func LinkedAccountsMenu() Menu {
	return Menu{
		{{"Дать доступ", CbLinkedAdd}},
		{{"Убрать доступ", CbLinkedDelete}},
		{{"Инструкция", CbLinkedInstruction}},
		{btnSettings},
	}
}

// UnlinkMenu lists linked users; the payload is the backend user id
func UnlinkMenu(users []domain.UserShort) Menu {
	buttons := make([]Button, 0, len(users))
	for _, u := range users {
		buttons = append(buttons, Button{Text: u.Username, Data: strconv.FormatInt(u.ID, 10)})
	}
	return Grid(buttons).WithRow(btnSettings)
}

// SpacesMenu lists spaces accessible to user; own spaces are marked "Моя"
func SpacesMenu(user *domain.User) Menu {
	spaces := user.AccessibleSpaces()
	buttons := make([]Button, 0, len(spaces))
	for _, s := range spaces {
		owner := s.OwnerUsername
		if s.IsOwnedBy(user.ID) {
			owner = "Моя"
		}
		buttons = append(buttons, Button{
			Text: fmt.Sprintf("%s (%s)", s.Name, owner),
			Data: PrefixSpace + strconv.FormatInt(s.ID, 10),
		})
	}
	return Grid(buttons).WithRow(btnSettings)
}

func JointChatAddMenu() Menu {
	return Menu{
		{{"Инструкция", CbJointChatGuide}},
		{btnSettings},
	}
}

func JointChatDeleteMenu() Menu {
	return Menu{
		{{"Отключить", CbJointChatDelete}},
		{btnSettings},
	}
}
