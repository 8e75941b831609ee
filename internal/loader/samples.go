package loader

import (
	"fmt"
	"time"

	"github.com/hitoshi/siteuser/internal/model"
)

type sampleRecord struct {
	id           int64
	name         string
	role         model.Role
	birthdate    string
	siblings     []string
	availability model.TimeRanges
	settings     string
	createdOn    string
}

var sampleRecords = []sampleRecord{
	{
		id:           1,
		name:         "Miriam Valira",
		role:         model.RoleAdmin,
		birthdate:    "1995-08-29",
		siblings:     []string{"Dani", "Louis"},
		availability: model.TimeRanges{{Start: "12:00:00", End: "15:00:00"}},
		settings:     `{"background": "red", "notifications":false}`,
		createdOn:    "09/23/15 08:56 AM",
	},
	{
		id:           2,
		name:         "Johann Müller",
		role:         model.RoleUser,
		birthdate:    "2002-05-09",
		siblings:     []string{},
		availability: model.TimeRanges{{Start: "09:00:00", End: "14:00:00"}, {Start: "18:00:00", End: "20:00:00"}},
		settings:     `{"notifications":true}`,
		createdOn:    "05/01/17 01:03 PM",
	},
	{
		id:           3,
		name:         "Louise Clark",
		role:         model.RoleModerator,
		birthdate:    "1992-05-03",
		siblings:     []string{"Monique"},
		availability: model.TimeRanges{{Start: "09:00:00", End: "12:00:00"}, {Start: "13:00:00", End: "17:00:00"}},
		settings:     `{"notifications":true}`,
		createdOn:    "03/21/07 10:31 AM",
	},
}

// SampleUsers は初期投入用のサンプルユーザーを返す。
// created_onはlocのタイムゾーンで解釈する。
func SampleUsers(loc *time.Location) ([]*model.SiteUser, error) {
	users := make([]*model.SiteUser, 0, len(sampleRecords))
	for _, rec := range sampleRecords {
		birthdate, err := model.ParseBirthdate(rec.birthdate)
		if err != nil {
			return nil, fmt.Errorf("invalid birthdate for sample user %d: %w", rec.id, err)
		}
		createdOn, err := model.ParseCreatedOn(rec.createdOn, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid created_on for sample user %d: %w", rec.id, err)
		}

		users = append(users, &model.SiteUser{
			ID:           rec.id,
			Name:         rec.name,
			Role:         rec.role,
			Birthdate:    birthdate,
			Siblings:     append([]string{}, rec.siblings...),
			Availability: append(model.TimeRanges{}, rec.availability...),
			Settings:     model.Settings(rec.settings),
			CreatedOn:    createdOn,
		})
	}
	return users, nil
}
