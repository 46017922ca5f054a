package handlers

import (
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/iudanet/famcal/internal/models"
	"github.com/iudanet/famcal/internal/server/storage"
	"github.com/iudanet/famcal/pkg/api"
)

// maxCalendarRangeDays - максимальная ширина запрашиваемого окна
const maxCalendarRangeDays = 366

// CalendarHandler собирает объединенный календарь: повторяющиеся
// дни рождения, спроецированные в запрошенное окно, плюс посты
type CalendarHandler struct {
	logger  *slog.Logger
	users   storage.UserStorage
	updates storage.UpdateStorage
}

// NewCalendarHandler создает новый handler календаря
func NewCalendarHandler(logger *slog.Logger, users storage.UserStorage, updates storage.UpdateStorage) *CalendarHandler {
	return &CalendarHandler{
		logger:  logger,
		users:   users,
		updates: updates,
	}
}

// Get обрабатывает GET /api/v1/calendar?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *CalendarHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from, to, err := parseDateRange(r)
	if err != nil {
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
		return
	}
	if to.Sub(from) > maxCalendarRangeDays*24*time.Hour {
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "range must not exceed one year")
		return
	}

	users, err := h.users.ListUsers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list users", slog.Any("error", err))
		sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		return
	}

	updates, err := h.updates.ListUpdatesBetween(ctx, from, to)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list updates", slog.Any("error", err))
		sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "")
		return
	}

	items := make([]*api.CalendarItem, 0, len(users)+len(updates))

	names := make(map[string]string, len(users))
	for _, user := range users {
		name := user.DisplayName
		if name == "" {
			name = user.Username
		}
		names[user.ID] = name

		if user.Birthday == nil {
			continue
		}
		for _, date := range projectBirthday(user.Birthday, from, to) {
			items = append(items, &api.CalendarItem{
				Type:   api.CalendarItemBirthday,
				Date:   date.Format("2006-01-02"),
				Title:  name,
				UserID: user.ID,
			})
		}
	}

	for _, update := range updates {
		items = append(items, &api.CalendarItem{
			Type:   api.CalendarItemUpdate,
			Date:   update.Date.Format("2006-01-02"),
			Title:  update.Title,
			Update: toUpdateView(update, names[update.AuthorID]),
		})
	}

	// Дни рождения раньше постов в пределах одной даты
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		return items[i].Type < items[j].Type
	})

	resp := api.CalendarResponse{
		From:  from.Format("2006-01-02"),
		To:    to.Format("2006-01-02"),
		Items: items,
	}
	sendJSON(h.logger, w, resp, http.StatusOK)
}

// projectBirthday проецирует повторяющийся день рождения в окно [from, to].
// 29 февраля в невисокосный год показывается 28 февраля.
func projectBirthday(birthday *models.Birthday, from, to time.Time) []time.Time {
	var dates []time.Time

	for year := from.Year(); year <= to.Year(); year++ {
		day := birthday.Day
		if birthday.Month == time.February && day == 29 && !isLeapYear(year) {
			day = 28
		}

		date := time.Date(year, birthday.Month, day, 0, 0, 0, 0, time.UTC)
		if !date.Before(from) && !date.After(to) {
			dates = append(dates, date)
		}
	}

	return dates
}

// isLeapYear проверяет високосность года
func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
