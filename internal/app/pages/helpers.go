package pages

import (
	"strconv"

	"github.com/Oudwins/tailwind-merge-go/pkg/twmerge"

	"github.com/FACorreiaa/moxc-web/internal/app/models"
	"github.com/FACorreiaa/moxc-web/internal/app/notify"
)

const (
	buttonBase    = "inline-flex items-center rounded-md px-4 py-2 text-sm font-medium bg-indigo-600 text-white hover:bg-indigo-500"
	inputBase     = "block w-full rounded-md border border-gray-300 px-3 py-2 text-sm"
	navLinkBase   = "px-3 py-2 text-sm text-gray-600 hover:text-gray-900"
	navLinkActive = "text-indigo-600 font-semibold"
	toastBase     = "toast rounded-md border px-4 py-3 text-sm shadow"
)

// classes merges Tailwind class lists so later utilities win over earlier ones.
func classes(base, extra string) string {
	if extra == "" {
		return base
	}
	return twmerge.Merge(base + " " + extra)
}

func navLinkClass(active bool) string {
	if active {
		return classes(navLinkBase, navLinkActive)
	}
	return navLinkBase
}

var toastLevelClass = map[notify.Level]string{
	notify.LevelError:   "border-red-300 bg-red-50 text-red-700",
	notify.LevelWarning: "border-yellow-300 bg-yellow-50 text-yellow-800",
	notify.LevelSuccess: "border-green-300 bg-green-50 text-green-700",
	notify.LevelInfo:    "border-blue-300 bg-blue-50 text-blue-700",
}

func toastClass(level notify.Level) string {
	return classes(toastBase, toastLevelClass[level])
}

// AnswerField is the form field name holding the answer to question id.
func AnswerField(id string) string {
	return "q:" + id
}

func questionTitle(i int, q models.Question) string {
	return strconv.Itoa(i+1) + ". " + q.Text
}

func optionLabel(o models.Option) string {
	return o.Key + ". " + o.Text
}
