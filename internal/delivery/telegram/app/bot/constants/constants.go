// internal/delivery/telegram/app/bot/constants/constants.go
package constants

// ButtonTexts тексты кнопок постоянной клавиатуры
var ButtonTexts = struct {
	JoinGroup          string
	SubscriptionStatus string
	Pay                string
	Cancel             string
	Renew              string
	OpenGroup          string
}{
	JoinGroup:          "Join Private Group",
	SubscriptionStatus: "Subscription Status",
	Pay:                "Pay now",
	Cancel:             "Cancel",
	Renew:              "Renew",
	OpenGroup:          "Open the group",
}

// Messages тексты сообщений пользователю
var Messages = struct {
	Welcome             string
	KeyboardPlaceholder string
	ChoosePlan          string
	Guidance            string
	NoSubscription      string
	StatusFormat        string
	CheckoutFormat      string
	PaymentFailed       string
	PaymentCancelled    string
	UnknownAction       string
	UnknownPlan         string
	Expired             string
	ConfirmationFormat  string
	InviteLinkFormat    string
	StatusFailed        string
	GenericError        string
}{
	Welcome:             "Welcome, please click on the 'Join private group' button below",
	KeyboardPlaceholder: "Select an option below to interact with the bot",
	ChoosePlan:          "Choose a subscription plan:",
	Guidance:            "You selected an option. Please use /plans to see subscription plans or other options.",
	NoSubscription:      "You do not have an active subscription",
	StatusFormat:        "Your subscription expires on: %s by %s",
	CheckoutFormat:      "You selected the %s plan (%s).\nComplete your payment using the button below.",
	PaymentFailed:       "We could not start your payment right now. Please try again later.",
	PaymentCancelled:    "Payment cancelled. Use /plans whenever you are ready to subscribe.",
	UnknownAction:       "This button is no longer valid. Please use /plans to see subscription plans.",
	UnknownPlan:         "This plan is not available. Please choose one of the plans below.",
	Expired:             "Your subscription has expired and you have been removed from the group. Renew your subscription to join again.",
	ConfirmationFormat:  "Payment received! Your %s subscription is active until %s by %s.",
	InviteLinkFormat:    "\n\nJoin the private group here: %s",
	StatusFailed:        "We could not check your subscription right now. Please try again later.",
	GenericError:        "Something went wrong. Please try again later.",
}

// Форматы дат в сообщениях
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Commands команды бота
var Commands = struct {
	Start  string
	Plans  string
	Status string
	Help   string
}{
	Start:  "start",
	Plans:  "plans",
	Status: "status",
	Help:   "help",
}

// CommandDescriptions описания для меню команд Telegram
var CommandDescriptions = map[string]string{
	"start":  "Show the main menu",
	"plans":  "See subscription plans",
	"status": "Check your subscription",
	"help":   "How to use the bot",
}

// CommandOrder порядок команд в меню
var CommandOrder = []string{"start", "plans", "status", "help"}
