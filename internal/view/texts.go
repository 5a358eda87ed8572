package view

import (
	"fmt"
	"strings"

	"ffbot/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	ChoosePeriod = "▶️     Выберите период, в который нужно вносить данные"
	Settings     = "⚙️    <b><u>Настройки приложения</u></b>    ⚙️"
	EmptySummary = "❗️ Пустая таблица ❗️\n❗️ Внесите данные ❗️"

	CreateGroup = "▶️     <b><u>Добавление статьи</u></b>\n\n" +
		"Выберите тип статьи\n\n⌨️"
	DeleteGroup = "▶️     <b><u>Удаление статьи</u></b>\n\n" +
		"Выберите тип статьи, которую хотите удалить\n\n⌨️"
	AddTransaction = "▶️     <b><u>Добавление транзакции</u></b>\n\n" +
		"Выберите тип статьи\n\n⌨️"

	GroupNameExists = "❗️     Такая статья уже существует\n\n" +
		"Пожалуйста, введите другое название\n\n⌨️"
	GroupsNotExist   = "❗️ Нет созданных статей ❗️"
	AskGroupToDelete = "▶️     <b><u>Удаление статьи</u></b>\n\n" +
		"Выберите статью, которую хотите удалить\n\n⌨️"
	AskTransactionGroup = "▶️     <b><u>Добавление транзакции</u></b>\n\n" +
		"Выберите статью\n\n⌨️"
	AskDescription = "▶️     <b><u>Добавление транзакции</u></b>\n\n" +
		"Введите описание операции\n\n⌨️"

	ChooseSpace = "⚙️    <b><u>Выбор базы</u></b>    ⚙️\n\n" +
		"Список доступных баз:\n\n⌨️"
	NotOwner          = "❗ Вы не являетесь владельцем текущей базы ❗"
	ConfirmDeleteUser = "❗️ Подтвердите удаление аккаунта ❗️\n" +
		"❗️ В случае подтверждения все данные будут удалены безвозвратно ❗️"
	DeletedUser      = "❗ ️ Аккаунт удален ❗️"
	CancelDeleteUser = "▶️     Вы отменили удаление аккаунта"

	AskChatID = "⚙️    <u>Только для своего аккаунта</u>    ⚙️\n\n" +
		"▶️     Введите ID чата, который хотите подключить " +
		"(вместе с знаком минус в начале, если он присутствует)"
	AskLinkID = "⚙️    <u>Только для своего аккаунта</u>    ⚙️\n\n" +
		"▶️     Введите Telegram ID пользователя, которому хотите дать доступ к текущей базе.\n" +
		"Узнать свой ID пользователь может командой /get_id\n\n⌨️"
	AskUnlink = "⚙️    <u>Только для своего аккаунта</u>    ⚙️\n\n" +
		"▶️     Выберите пользователя, у которого нужно забрать доступ"
	UserNotRegistered = "❗️ Пользователь с таким ID не зарегистрирован ❗️"
	UserUnlinked      = "▶️     Доступ к базе отозван"

	NeedSpace   = "❗️ Не выбрана база ❗️\n\nВыберите базу в настройках"
	ChooseYear  = "Выберите год 👇"
	ChooseMonth = "Выберите месяц 👇"
	FileSent    = "Файл отправлен"
	ExportName  = "family_finance.xlsx"

	FailChoosePeriod   = "❗️ Ошибка при выборе периода. Попробуйте позже ❗️"
	Throttled          = "Слишком много запросов, подождите немного"
	SpaceNotAccessible = "Нет доступа к этой базе"

	LinkedAccountsGuide = "⚙️    <b><u>Общий доступ</u></b>    ⚙️\n\n" +
		"1. Попросите пользователя зарегистрироваться в боте\n" +
		"2. Пусть он отправит команду /get_id и перешлет вам свой ID\n" +
		"3. Нажмите «Дать доступ» и введите полученный ID\n\n" +
		"Пользователь увидит вашу базу в разделе «Выбрать базу»"
	JointChatGuide = "⚙️    <b><u>Общий чат</u></b>    ⚙️\n\n" +
		"1. Создайте групповой чат и добавьте в него бота\n" +
		"2. Отправьте в чат команду /get_id\n" +
		"3. Скопируйте ID чата вместе со знаком минус\n" +
		"4. Нажмите «Подключить чат» в настройках и отправьте ID\n\n" +
		"В чат будут приходить уведомления об изменениях в базе"
)

// Actor is the user whose action is reported to a joint chat
type Actor struct {
	FirstName  string
	TelegramID int64
}

// TypeName is the Russian label of a transaction type
func TypeName(t domain.TransactionType) string {
	if t == domain.Income {
		return "Доход"
	}
	return "Расход"
}

func spaceName(user *domain.User) string {
	if space := user.CurrentSpace(); space != nil {
		return escape(space.Name)
	}
	return ""
}

func periodOf(user *domain.User) string {
	p, _ := user.Period()
	return p.String()
}

// MainText greets the user with the active space and period
func MainText(a Actor, user *domain.User) string {
	return fmt.Sprintf("<b>♻️     %s, привет!\n"+
		"▶️     <u>Твой ID:</u> %d\n"+
		"▶️     <u>База:</u> %s\n"+
		"▶️     <u>Период:</u> %s</b>",
		escape(a.FirstName), a.TelegramID, spaceName(user), periodOf(user))
}

func NeedRegistration(firstName string) string {
	return fmt.Sprintf("♻️     %s, привет!\n\n"+
		"▶️     Это бот для ведения семейного бюджета.\n"+
		"▶️     Чтобы начать, нажмите «Регистрация»", escape(firstName))
}

func Description(contactEmail string) string {
	text := "▶️     <b><u>Описание</u></b>\n\n" +
		"Бот ведет план и факт доходов и расходов по месяцам.\n\n" +
		"💾  <b>Статья</b> это строка бюджета с плановым значением\n" +
		"💾  <b>Запись</b> добавляет сумму к факту статьи\n" +
		"💾  <b>База</b> это набор статей, которым можно поделиться\n" +
		"💾  <b>Период</b> это месяц, в который вносятся данные\n\n" +
		"Все суммы вводятся в тысячах рублей."
	if contactEmail != "" {
		text += "\n\nВопросы и предложения: " + escape(contactEmail)
	}
	return text
}

func AskGroupName(maxLen int) string {
	return fmt.Sprintf("▶️     <b><u>Добавление статьи</u></b>\n\n"+
		"Введите название статьи\n"+
		"- <u>не более %d</u> символов\n\n⌨️", maxLen)
}

func AskPlanValue(name string) string {
	return fmt.Sprintf("▶️     <b><u>Добавление статьи</u></b>\n\n"+
		"Статья: %s\n"+
		"Введите плановое значение:\n "+
		"- в <u>тысячах рублей</u>\n"+
		"- в <u>формате числа</u> (например 15 или 2.7)\n\n⌨️", escape(name))
}

func CreatedGroup(g *domain.Group) string {
	return fmt.Sprintf("▶️  Создана статья %s (%s)\n▶️  Плановое значение: %s т.р.",
		escape(g.Name), TypeName(g.Type), FormatThousands(g.PlanValue, PlacesPlan))
}

func NoticeCreateGroup(a Actor, user *domain.User, g *domain.Group) string {
	return fmt.Sprintf("❗️  Пользователь <u>%s</u> (%d) добавил статью\n"+
		"💾  База: %s\n"+
		"💾  Период: %s\n"+
		"💾  Статья (%s): %s\n"+
		"💾  Плановое значение: %s т.р.",
		escape(a.FirstName), a.TelegramID, spaceName(user), periodOf(user),
		TypeName(g.Type), escape(g.Name), FormatThousands(g.PlanValue, PlacesPlan))
}

func DeletedGroup(g *domain.Group) string {
	return fmt.Sprintf("❗️ Статья %s (%s) удалена ❗️", escape(g.Name), TypeName(g.Type))
}

func NoticeDeleteGroup(a Actor, user *domain.User, g *domain.Group) string {
	return fmt.Sprintf("❗️  Пользователь <u>%s</u> (%d) удалил статью\n"+
		"💾  База: %s\n"+
		"💾  Период: %s\n"+
		"💾  Статья (%s): %s\n",
		escape(a.FirstName), a.TelegramID, spaceName(user), periodOf(user),
		TypeName(g.Type), escape(g.Name))
}

func AskTransactionValue(groupName string) string {
	return fmt.Sprintf("▶️     <b><u>Добавление транзакции</u></b>\n\n"+
		"Статья: <b>%s</b>\n"+
		"Введите значение:\n"+
		"- в <u>тысячах рублей</u>\n"+
		"- в <u>формате числа</u> (например 15 или 2.7)\n\n⌨️", escape(groupName))
}

func AddedTransaction(user *domain.User, t domain.TransactionType, groupName string, oldFact decimal.Decimal, tx *domain.Transaction) string {
	return fmt.Sprintf("♻️  Успешно добавлена транзакция.\n"+
		"💾  Период: %s\n"+
		"💾  Статья (%s): %s\n"+
		"💾  Значение: %s т.р. -> %s т.р.\n"+
		"💾  Описание: %s",
		periodOf(user), TypeName(t), escape(groupName),
		FormatThousands(oldFact, PlacesTransaction),
		FormatThousands(tx.Value, PlacesTransaction),
		escape(tx.Description))
}

func NoticeTransaction(a Actor, user *domain.User, t domain.TransactionType, groupName string, tx *domain.Transaction) string {
	return fmt.Sprintf("♻️  Пользователь <u>%s</u> (%d) добавил запись\n"+
		"💾  База: %s\n"+
		"💾  Период: %s\n"+
		"💾  Статья (%s): %s\n"+
		"💾  Сумма операции: %s т.р.\n"+
		"💾  Описание: %s",
		escape(a.FirstName), a.TelegramID, spaceName(user), periodOf(user),
		TypeName(t), escape(groupName),
		FormatThousands(tx.Value, PlacesTransaction), escape(tx.Description))
}

func SpaceChanged(space *domain.Space, user *domain.User) string {
	return fmt.Sprintf("▶️     База изменена на %s\n▶️     <u>Период:</u> %s",
		escape(space.Name), periodOf(user))
}

func LinkedChatConnected(chat string) string {
	return fmt.Sprintf("⚙️    <u>Только для своего аккаунта</u>    ⚙️\n\n"+
		"▶️     Чат %s подключен.", escape(chat))
}

func ChatLinked(chat string, user *domain.User) string {
	return fmt.Sprintf("▶️     Чат %s подключен\n\n"+
		"▶️     <u>База:</u> %s\n"+
		"▶️     <u>Период:</u> %s", escape(chat), spaceName(user), periodOf(user))
}

func ChatUnlinked(user *domain.User) string {
	return fmt.Sprintf("▶️     Чат отключен\n"+
		"▶️     <u>База:</u> %s\n"+
		"▶️     <u>Период:</u> %s", spaceName(user), periodOf(user))
}

func NoLinkedUsers(space *domain.Space) string {
	return fmt.Sprintf("⚙️    <b><u>Общий доступ</u></b>    ⚙️\n\n"+
		"▶️     К базе %s пока никто не подключен", escape(space.Name))
}

// LinkedUsers lists users with access to space
func LinkedUsers(space *domain.Space) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚙️    <b><u>Общий доступ</u></b>    ⚙️\n\n"+
		"▶️     Доступ к базе %s есть у:\n", escape(space.Name))
	for _, u := range space.AvailableLinkedUsers {
		fmt.Fprintf(&b, "💾  %s", escape(u.Username))
		if u.IDTelegram != nil {
			fmt.Fprintf(&b, " (%d)", *u.IDTelegram)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func UserLinked(telegramID int64) string {
	return fmt.Sprintf("▶️     Пользователь %d получил доступ к базе", telegramID)
}

func PrivateID(telegramID int64) string {
	return fmt.Sprintf("▶️     Ваш Telegram ID: <code>%d</code>", telegramID)
}

func ChatID(chatID int64) string {
	return fmt.Sprintf("▶️     ID этого чата: <code>%d</code>", chatID)
}
