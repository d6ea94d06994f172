package agenda

import (
	"time"

	"vet-appointments/internal/domain/appointments"
	"vet-appointments/internal/domain/calendar"
)

type appointmentResponse struct {
	ID                 int64      `json:"id"`
	ClientID           int64      `json:"client_id"`
	PetID              int64      `json:"pet_id"`
	ServiceID          int64      `json:"service_id"`
	VeterinarianUserID *int64     `json:"veterinarian_user_id,omitempty"`
	Date               string     `json:"date"`
	Time               string     `json:"time"`
	Reason             string     `json:"reason,omitempty"`
	Symptoms           string     `json:"symptoms,omitempty"`
	PriorDiagnosis     string     `json:"prior_diagnosis,omitempty"`
	PriorTreatments    []string   `json:"prior_treatments,omitempty"`
	AdditionalNotes    string     `json:"additional_notes,omitempty"`
	Status             string     `json:"status"`
	StatusLabel        string     `json:"status_label"`
	NextStatuses       []string   `json:"next_statuses"`
	Attended           *bool      `json:"attended,omitempty"`
	CreatedAt          *time.Time `json:"created_at,omitempty"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`

	ClientName       string `json:"client_name,omitempty"`
	PetName          string `json:"pet_name,omitempty"`
	VeterinarianName string `json:"veterinarian_name,omitempty"`
	ServiceName      string `json:"service_name,omitempty"`

	Pet           *petSummary          `json:"pet,omitempty"`
	Service       *serviceSummary      `json:"service,omitempty"`
	Veterinarian  *veterinarianSummary `json:"veterinarian"`
	ClinicalNotes *clinicalNotes       `json:"clinical_notes,omitempty"`
}

type petSummary struct {
	Name    string `json:"name"`
	Species string `json:"species,omitempty"`
}

type serviceSummary struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type veterinarianSummary struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
}

type clinicalNotes struct {
	Reason          string `json:"reason,omitempty"`
	Symptoms        string `json:"symptoms,omitempty"`
	Status          string `json:"status,omitempty"`
	AdditionalNotes string `json:"additional_notes,omitempty"`
}

type statisticsResponse struct {
	Total     int `json:"total"`
	Scheduled int `json:"scheduled"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
	Completed int `json:"completed"`
}

type monthResponse struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Title string `json:"title"`
}

type rangeResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type dayResponse struct {
	Number         int                   `json:"number"`
	Date           string                `json:"date"`
	InMonth        bool                  `json:"in_month"`
	IsToday        bool                  `json:"is_today"`
	AppointmentIDs []int64               `json:"appointment_ids"`
	Appointments   []appointmentResponse `json:"appointments"`
}

type calendarResponse struct {
	Month    monthResponse   `json:"month"`
	Weekdays []string        `json:"weekdays"`
	Weeks    [][]dayResponse `json:"weeks"`
}

type veterinarianResponse struct {
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
}

type rescheduleResponse struct {
	AppointmentID int64  `json:"appointment_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Reason        string `json:"reason"`
}

type stateResponse struct {
	Loading        bool                   `json:"loading"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Notice         string                 `json:"notice,omitempty"`
	ViewMode       ViewMode               `json:"view_mode"`
	StatusFilter   string                 `json:"status_filter"`
	Month          monthResponse          `json:"month"`
	Range          rangeResponse          `json:"range"`
	ClientID       *int64                 `json:"client_id,omitempty"`
	VeterinarianID *int64                 `json:"veterinarian_id,omitempty"`
	Appointments   []appointmentResponse  `json:"appointments"`
	Filtered       []appointmentResponse  `json:"filtered"`
	Summary        statisticsResponse     `json:"summary"`
	Statistics     *statisticsResponse    `json:"statistics,omitempty"`
	Calendar       *calendarResponse      `json:"calendar,omitempty"`
	Veterinarians  []veterinarianResponse `json:"veterinarians,omitempty"`
	Reschedule     *rescheduleResponse    `json:"reschedule,omitempty"`
	RequestToken   uint64                 `json:"request_token"`
	UsingFallback  bool                   `json:"using_fallback,omitempty"`
}

func toAppointmentResponse(d appointments.Detail) appointmentResponse {
	next := appointments.NextStatuses(d.Status)
	nextOut := make([]string, 0, len(next))
	for _, s := range next {
		nextOut = append(nextOut, string(s))
	}

	out := appointmentResponse{
		ID:                 int64(d.ID),
		ClientID:           d.ClientID,
		PetID:              d.PetID,
		ServiceID:          d.ServiceID,
		VeterinarianUserID: d.VeterinarianUserID,
		Date:               d.DateKey(),
		Time:               d.Time,
		Reason:             d.Reason,
		Symptoms:           d.Symptoms,
		PriorDiagnosis:     d.PriorDiagnosis,
		PriorTreatments:    d.PriorTreatments,
		AdditionalNotes:    d.AdditionalNotes,
		Status:             string(d.Status),
		StatusLabel:        d.Status.Label(),
		NextStatuses:       nextOut,
		Attended:           d.Attended,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
		ClientName:         d.ClientName,
		PetName:            d.PetName,
		VeterinarianName:   d.VeterinarianName,
		ServiceName:        d.ServiceName,
	}
	if d.Pet != nil {
		out.Pet = &petSummary{Name: d.Pet.Name, Species: d.Pet.Species}
	}
	if d.Service != nil {
		out.Service = &serviceSummary{Name: d.Service.Name, Price: d.Service.Price}
	}
	if d.Veterinarian != nil {
		out.Veterinarian = &veterinarianSummary{Name: d.Veterinarian.Name, Specialty: d.Veterinarian.Specialty}
	}
	if n := d.ClinicalNotes; n != nil {
		out.ClinicalNotes = &clinicalNotes{
			Reason:          n.Reason,
			Symptoms:        n.Symptoms,
			Status:          n.Status,
			AdditionalNotes: n.AdditionalNotes,
		}
	}
	return out
}

func toAppointmentResponses(items []appointments.Detail) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toAppointmentResponse(it))
	}
	return out
}

func toStatisticsResponse(s appointments.Statistics) statisticsResponse {
	return statisticsResponse{
		Total:     s.Total,
		Scheduled: s.Scheduled,
		Confirmed: s.Confirmed,
		Cancelled: s.Cancelled,
		Completed: s.Completed,
	}
}

func toMonthResponse(m calendar.Month) monthResponse {
	return monthResponse{Year: m.Year, Month: int(m.Month), Title: calendar.Title(m)}
}

func toCalendarResponse(m calendar.Month, days []calendar.Day, now time.Time) calendarResponse {
	weeks := calendar.Weeks(days)
	out := calendarResponse{
		Month:    toMonthResponse(m),
		Weekdays: calendar.WeekdayLabels[:],
		Weeks:    make([][]dayResponse, 0, len(weeks)),
	}
	for _, week := range weeks {
		row := make([]dayResponse, 0, len(week))
		for _, d := range week {
			ids := make([]int64, 0, len(d.Appointments))
			for _, it := range d.Appointments {
				ids = append(ids, int64(it.ID))
			}
			row = append(row, dayResponse{
				Number:         d.Number,
				Date:           d.Date.Format(appointments.DateLayout),
				InMonth:        d.InDisplayedMonth,
				IsToday:        calendar.IsToday(d, now),
				AppointmentIDs: ids,
				Appointments:   toAppointmentResponses(d.Appointments),
			})
		}
		out.Weeks = append(out.Weeks, row)
	}
	return out
}

func toStateResponse(s State, now time.Time) stateResponse {
	out := stateResponse{
		Loading:        s.Loading,
		ErrorMessage:   s.ErrorMessage,
		Notice:         s.Notice,
		ViewMode:       s.ViewMode,
		StatusFilter:   s.StatusFilter,
		Month:          toMonthResponse(s.Month),
		Range:          rangeResponse{Start: s.Range.Start.Format(appointments.DateLayout), End: s.Range.End.Format(appointments.DateLayout)},
		ClientID:       s.ClientID,
		VeterinarianID: s.VeterinarianID,
		Appointments:   toAppointmentResponses(s.Appointments),
		Filtered:       toAppointmentResponses(s.Filtered),
		Summary:        toStatisticsResponse(s.Summary),
		RequestToken:   s.RequestToken,
		UsingFallback:  s.UsingFallback,
	}
	if s.Statistics != nil {
		st := toStatisticsResponse(*s.Statistics)
		out.Statistics = &st
	}
	if s.ViewMode == ViewCalendar {
		cal := toCalendarResponse(s.Month, s.Calendar, now)
		out.Calendar = &cal
	}
	for _, v := range s.Veterinarians {
		out.Veterinarians = append(out.Veterinarians, veterinarianResponse{UserID: v.UserID, Name: v.Name, Specialty: v.Specialty})
	}
	if d := s.Reschedule; d != nil {
		out.Reschedule = &rescheduleResponse{
			AppointmentID: int64(d.AppointmentID),
			Date:          d.Date.Format(appointments.DateLayout),
			Time:          d.Time,
			Reason:        d.Reason,
		}
	}
	return out
}
