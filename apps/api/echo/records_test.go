package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/agenda/core/record"
	"github.com/trezcool/agenda/core/user"
	"github.com/trezcool/agenda/testutil"
)

func createRecord(t *testing.T, repo record.Repository, studentID string, date time.Time) record.DailyRecord {
	t.Helper()
	now := time.Now().UTC()
	r, err := repo.CreateRecord(context.Background(), record.DailyRecord{
		StudentID:        studentID,
		Date:             date,
		Breakfast:        true,
		WipesRemaining:   50,
		DiapersRemaining: 80,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	require.NoError(t, err)
	return r
}

func Test_recordApi(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateUser(t, app.repos.users, "Ada", "ada@example.com", "", user.RoleAdmin)
	teacher := testutil.CreateUser(t, app.repos.users, "Teo", "teo@example.com", "", user.RoleTeacher)
	tutor := testutil.CreateUser(t, app.repos.users, "Tina", "tina@example.com", "", user.RoleTutor)
	tutor2 := testutil.CreateUser(t, app.repos.users, "Toni", "toni@example.com", "", user.RoleTutor)

	c := testutil.CreateCenter(t, app.repos.centers, "Centro")
	bears := testutil.CreateClassroom(t, app.repos.classrooms, c.ID, "Bears", 0, 1, 10, teacher.ID)
	lions := testutil.CreateClassroom(t, app.repos.classrooms, c.ID, "Lions", 2, 3, 10)
	emma := testutil.CreateStudent(t, app.repos.students, "Emma", c.ID, bears.ID, tutor.ID, time.Time{})
	leo := testutil.CreateStudent(t, app.repos.students, "Leo", c.ID, lions.ID, tutor2.ID, time.Time{})

	d1 := time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	emma1 := createRecord(t, app.repos.records, emma.ID, d1)
	emma2 := createRecord(t, app.repos.records, emma.ID, d2)
	leo1 := createRecord(t, app.repos.records, leo.ID, d1)

	adminToken := app.getToken(t, admin)
	teacherToken := app.getToken(t, teacher)
	tutorToken := app.getToken(t, tutor)

	newRecord := func(studentID string) []byte {
		return marchallObj(t, map[string]interface{}{
			"student_id": studentID, "date": d2, "snack": true, "wipes_remaining": 40, "diapers_remaining": 30,
			"napped": true, "nap_start": d2.Add(13 * time.Hour), "nap_end": d2.Add(14 * time.Hour),
		})
	}

	app.run(t, []httpTest{
		{name: "admin sees all", path: "/v1/records", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, emma1, emma2, leo1)},
		{
			name: "date range", path: "/v1/records?date_from=2024-02-06&date_to=2024-02-06", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, emma2),
		},
		{
			name: "invalid date", path: "/v1/records?date_from=yesterday", token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"date_from": errInvalidDate.Error()}),
		},
		{name: "teacher", path: "/v1/records", token: teacherToken, wantCode: http.StatusOK, wantData: marchallList(t, emma1, emma2)},
		{name: "tutor", path: "/v1/records", token: tutorToken, wantCode: http.StatusOK, wantData: marchallList(t, emma1, emma2)},
		{name: "tutor: own child", path: "/v1/records/" + emma1.ID, token: tutorToken, wantCode: http.StatusOK, wantData: marchallObj(t, emma1)},
		{name: "tutor: other child", path: "/v1/records/" + leo1.ID, token: tutorToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{
			name: "tutors cannot write", method: http.MethodPost, path: "/v1/records", token: tutorToken, body: newRecord(emma.ID),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "teacher: other classroom", method: http.MethodPost, path: "/v1/records", token: teacherToken, body: newRecord(leo.ID),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "unknown student", method: http.MethodPost, path: "/v1/records", token: teacherToken, body: newRecord("nope"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"student_id": record.ErrUnknownStudent.Error()}),
		},
		{
			name: "nap ends before it starts", method: http.MethodPut, path: "/v1/records/" + emma1.ID, token: teacherToken,
			body: marchallObj(t, map[string]interface{}{
				"napped": true, "nap_start": d1.Add(14 * time.Hour), "nap_end": d1.Add(13 * time.Hour),
			}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"nap_end": "nap end must not be before nap start"}),
		},
		{
			name: "wipes out of range", method: http.MethodPut, path: "/v1/records/" + emma1.ID, token: teacherToken,
			body:     []byte(`{"wipes_remaining":120}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"wipes_remaining": "wipes_remaining must be 100 or less"}),
		},
	})

	t.Run("teacher records their own students", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/records", teacherToken, newRecord(emma.ID))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var got record.DailyRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, emma.ID, got.StudentID)
		assert.True(t, got.Snack)
		assert.Equal(t, 40, got.WipesRemaining)
		assert.True(t, got.NapEnd.Valid)
	})

	t.Run("teacher updates a record", func(t *testing.T) {
		rec := app.do(http.MethodPut, "/v1/records/"+emma2.ID, teacherToken, []byte(`{"comments":" slept well ","dessert":true}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got record.DailyRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "slept well", got.Comments)
		assert.True(t, got.Dessert)
		assert.True(t, got.Breakfast, "untouched fields are kept")
		assert.Equal(t, 50, got.WipesRemaining)
	})
}
