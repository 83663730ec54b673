package core

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"classroom/entity"
	"classroom/impl/auth"
)

// ---------- mocks ----------

type memoryStore struct {
	codes    map[string]*entity.AccessCode
	students map[string]*entity.Student
	users    map[string]*entity.User
	messages []*entity.ChatMessage

	// simulates the window where a concurrent setup is not yet visible to
	// the username lookup but the unique index still rejects it
	hideUsernames bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		codes:    make(map[string]*entity.AccessCode),
		students: make(map[string]*entity.Student),
		users:    make(map[string]*entity.User),
	}
}

func (s *memoryStore) SaveAccessCode(code *entity.AccessCode) error {
	clone := *code
	s.codes[code.Identifier] = &clone
	return nil
}

func (s *memoryStore) GetAccessCode(identifier string) (*entity.AccessCode, error) {
	code, ok := s.codes[identifier]
	if !ok {
		return nil, nil
	}
	clone := *code
	return &clone, nil
}

func (s *memoryStore) DeleteAccessCode(identifier string) error {
	delete(s.codes, identifier)
	return nil
}

func (s *memoryStore) InsertStudent(student *entity.Student) error {
	if _, ok := s.students[student.Phone]; ok {
		return errors.New("duplicate key")
	}
	clone := *student
	s.students[student.Phone] = &clone
	return nil
}

func (s *memoryStore) GetStudent(phone string) (*entity.Student, error) {
	student, ok := s.students[phone]
	if !ok {
		return nil, nil
	}
	clone := *student
	return &clone, nil
}

func (s *memoryStore) GetStudentByEmail(email string) (*entity.Student, error) {
	for _, student := range s.students {
		if student.Email == email {
			clone := *student
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) GetStudentByUsername(username string) (*entity.Student, error) {
	if s.hideUsernames {
		return nil, nil
	}
	for _, student := range s.students {
		if student.Username != "" && student.Username == username {
			clone := *student
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) GetStudentBySetupToken(token string) (*entity.Student, error) {
	for _, student := range s.students {
		if student.SetupToken != "" && student.SetupToken == token {
			clone := *student
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) ListStudents() ([]*entity.Student, error) {
	result := make([]*entity.Student, 0, len(s.students))
	for _, student := range s.students {
		clone := *student
		result = append(result, &clone)
	}
	return result, nil
}

func (s *memoryStore) UpdateStudent(phone, name, email string) (bool, error) {
	student, ok := s.students[phone]
	if !ok {
		return false, nil
	}
	if name != "" {
		student.Name = name
	}
	if email != "" {
		student.Email = email
	}
	return true, nil
}

func (s *memoryStore) DeleteStudent(phone string) (bool, error) {
	if _, ok := s.students[phone]; !ok {
		return false, nil
	}
	delete(s.students, phone)
	return true, nil
}

func (s *memoryStore) PushLesson(phone string, lesson *entity.Lesson) (bool, error) {
	student, ok := s.students[phone]
	if !ok {
		return false, nil
	}
	student.Lessons = append(student.Lessons, *lesson)
	return true, nil
}

func (s *memoryStore) CompleteLesson(phone, lessonId string, at time.Time) (bool, error) {
	student, ok := s.students[phone]
	if !ok {
		return false, nil
	}
	matched := false
	for i := range student.Lessons {
		if student.Lessons[i].Id != lessonId {
			continue
		}
		matched = true
		if !student.Lessons[i].Completed {
			student.Lessons[i].Completed = true
			completedAt := at
			student.Lessons[i].CompletedAt = &completedAt
		}
	}
	return matched, nil
}

func (s *memoryStore) ConsumeSetupToken(token, username, passwordHash string, now time.Time) (bool, error) {
	for _, student := range s.students {
		if student.SetupToken != token || !now.Before(student.SetupTokenExpires) {
			continue
		}
		// the unique username index rejects duplicates at write time
		for _, other := range s.students {
			if other != student && other.Username == username {
				return false, ErrUsernameTaken
			}
		}
		student.Username = username
		student.PasswordHash = passwordHash
		student.AccountSetup = true
		student.SetupToken = ""
		student.SetupTokenExpires = time.Time{}
		return true, nil
	}
	return false, nil
}

func (s *memoryStore) GetUserRecord(identifier string) (*entity.User, error) {
	user, ok := s.users[identifier]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (s *memoryStore) SaveUserRecord(user *entity.User) error {
	clone := *user
	s.users[user.Identifier] = &clone
	return nil
}

func (s *memoryStore) SaveMessage(message *entity.ChatMessage) error {
	clone := *message
	s.messages = append(s.messages, &clone)
	return nil
}

func (s *memoryStore) GetConversation(a, b string) ([]*entity.ChatMessage, error) {
	var result []*entity.ChatMessage
	for _, m := range s.messages {
		if (m.From == a && m.To == b) || (m.From == b && m.To == a) {
			clone := *m
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (s *memoryStore) MarkMessagesRead(ids []string) error {
	for _, m := range s.messages {
		for _, id := range ids {
			if m.Id == id {
				m.Read = true
			}
		}
	}
	return nil
}

type mockSms struct {
	lastTo   string
	lastCode string
	sendErr  error
	sent     int
}

func (m *mockSms) SendAccessCode(phone, code string) error {
	m.lastTo = phone
	m.lastCode = code
	m.sent++
	return m.sendErr
}

type mockMail struct {
	lastTo   string
	lastCode string
	lastLink string
	sendErr  error
}

func (m *mockMail) SendAccessCode(email, code string) error {
	m.lastTo = email
	m.lastCode = code
	return m.sendErr
}

func (m *mockMail) SendInvitation(email, _, setupLink string) error {
	m.lastTo = email
	m.lastLink = setupLink
	return m.sendErr
}

type mockBus struct {
	subjects []string
	payloads []interface{}
}

func (m *mockBus) Publish(subject string, data interface{}) error {
	m.subjects = append(m.subjects, subject)
	m.payloads = append(m.payloads, data)
	return nil
}

// ---------- fixture ----------

type fixture struct {
	core  *Core
	store *memoryStore
	sms   *mockSms
	mail  *mockMail
	bus   *mockBus
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemoryStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	c := New(store, Options{BaseUrl: "http://localhost:5173"}, log)
	f := &fixture{
		core:  c,
		store: store,
		sms:   &mockSms{},
		mail:  &mockMail{},
		bus:   &mockBus{},
		clock: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	c.SetSmsSender(f.sms)
	c.SetMailSender(f.mail)
	c.SetPublisher(f.bus)
	c.now = func() time.Time { return f.clock }

	session, err := auth.New("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("session service: %v", err)
	}
	c.SetSessionService(session)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

const testPhone = "+15551234567"

// ---------- one-time codes ----------

func TestAccessCodeSingleUse(t *testing.T) {
	f := newFixture(t)

	if err := f.core.IssuePhoneCode(testPhone); err != nil {
		t.Fatalf("issue code: %v", err)
	}
	code := f.sms.lastCode
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}

	if _, err := f.core.ValidatePhoneCode(testPhone, code); err != nil {
		t.Fatalf("first validation: %v", err)
	}
	_, err := f.core.ValidatePhoneCode(testPhone, code)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on replay, got %v", err)
	}
}

func TestAccessCodeExpiry(t *testing.T) {
	f := newFixture(t)

	if err := f.core.IssuePhoneCode(testPhone); err != nil {
		t.Fatalf("issue code: %v", err)
	}
	f.advance(5*time.Minute + time.Second)

	_, err := f.core.ValidatePhoneCode(testPhone, f.sms.lastCode)
	if !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", err)
	}
}

func TestAccessCodeOverwrite(t *testing.T) {
	f := newFixture(t)

	if err := f.core.IssuePhoneCode(testPhone); err != nil {
		t.Fatalf("issue first code: %v", err)
	}
	first := f.sms.lastCode

	// loop until the second code differs; rand can repeat
	second := first
	for second == first {
		if err := f.core.IssuePhoneCode(testPhone); err != nil {
			t.Fatalf("issue second code: %v", err)
		}
		second = f.sms.lastCode
	}

	if _, err := f.core.ValidatePhoneCode(testPhone, first); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected first code invalidated, got %v", err)
	}
	if _, err := f.core.ValidatePhoneCode(testPhone, second); err != nil {
		t.Fatalf("second code should validate: %v", err)
	}
}

func TestValidateWrongCode(t *testing.T) {
	f := newFixture(t)

	if err := f.core.IssuePhoneCode(testPhone); err != nil {
		t.Fatalf("issue code: %v", err)
	}
	wrong := "000000"
	if wrong == f.sms.lastCode {
		wrong = "000001"
	}
	if _, err := f.core.ValidatePhoneCode(testPhone, wrong); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}

	// the stored code survives a failed attempt
	result, err := f.core.ValidatePhoneCode(testPhone, f.sms.lastCode)
	if err != nil {
		t.Fatalf("correct code rejected: %v", err)
	}
	if result.UserType != entity.RoleInstructor {
		t.Fatalf("expected instructor with no profile, got %s", result.UserType)
	}
}

func TestEmailCodeFlow(t *testing.T) {
	f := newFixture(t)

	if err := f.core.IssueEmailCode("Ann@X.com"); err != nil {
		t.Fatalf("issue email code: %v", err)
	}
	if f.mail.lastTo != "ann@x.com" {
		t.Fatalf("expected normalized recipient, got %s", f.mail.lastTo)
	}
	result, err := f.core.ValidateEmailCode("ann@x.com", f.mail.lastCode)
	if err != nil {
		t.Fatalf("validate email code: %v", err)
	}
	if result.UserType != entity.RoleInstructor {
		t.Fatalf("unexpected user type %s", result.UserType)
	}
}

func TestDeliveryFailureSurfaces(t *testing.T) {
	f := newFixture(t)
	f.sms.sendErr = errors.New("provider down")

	err := f.core.IssuePhoneCode(testPhone)
	if err == nil {
		t.Fatal("expected delivery error")
	}
	// the orphaned record is harmless and must still self-expire
	record, _ := f.store.GetAccessCode(testPhone)
	if record == nil {
		t.Fatal("expected stored code to remain")
	}
}

func TestCodeValidationIssuesInstructorSession(t *testing.T) {
	f := newFixture(t)

	if err := f.core.IssuePhoneCode(testPhone); err != nil {
		t.Fatalf("issue code: %v", err)
	}
	result, err := f.core.ValidatePhoneCode(testPhone, f.sms.lastCode)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected session token; the code flow is the only instructor login")
	}

	session, err := f.core.AuthenticateByToken(result.Token)
	if err != nil {
		t.Fatalf("authenticate issued token: %v", err)
	}
	if !session.IsInstructor() {
		t.Fatalf("expected instructor session, got %s", session.UserType)
	}
	if session.Subject != testPhone {
		t.Fatalf("unexpected subject %s", session.Subject)
	}
}

func TestFirstLoginRegistration(t *testing.T) {
	f := newFixture(t)

	if err := f.core.IssuePhoneCode(testPhone); err != nil {
		t.Fatalf("issue code: %v", err)
	}
	if _, err := f.core.ValidatePhoneCode(testPhone, f.sms.lastCode); err != nil {
		t.Fatalf("validate: %v", err)
	}

	user, err := f.store.GetUserRecord(testPhone)
	if err != nil || user == nil {
		t.Fatalf("expected user record after first login, got %v, %v", user, err)
	}
	if user.Role != entity.RoleInstructor {
		t.Fatalf("unexpected role %s", user.Role)
	}
}

// ---------- invitations and account setup ----------

func (f *fixture) invite(t *testing.T) string {
	t.Helper()
	if err := f.core.AddStudent("Ann", testPhone, "ann@x.com"); err != nil {
		t.Fatalf("add student: %v", err)
	}
	link := f.mail.lastLink
	idx := strings.Index(link, "token=")
	if idx < 0 {
		t.Fatalf("setup link has no token: %s", link)
	}
	return link[idx+len("token="):]
}

func TestInvitationFlow(t *testing.T) {
	f := newFixture(t)
	token := f.invite(t)

	details, err := f.core.ValidateInvitation(token)
	if err != nil {
		t.Fatalf("validate invitation: %v", err)
	}
	if details.Email != "ann@x.com" || details.Name != "Ann" || details.Phone != testPhone {
		t.Fatalf("unexpected details %+v", details)
	}

	if err = f.core.SetupAccount(token, "ann1", "secret6"); err != nil {
		t.Fatalf("setup account: %v", err)
	}

	result, err := f.core.LoginPassword("ann1", "secret6")
	if err != nil {
		t.Fatalf("login after setup: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected session token")
	}
	if result.Phone != testPhone || result.UserType != entity.RoleStudent {
		t.Fatalf("unexpected login result %+v", result)
	}

	session, err := f.core.AuthenticateByToken(result.Token)
	if err != nil {
		t.Fatalf("authenticate issued token: %v", err)
	}
	if session.Subject != testPhone {
		t.Fatalf("unexpected session subject %s", session.Subject)
	}
}

func TestInvitationExpiry(t *testing.T) {
	f := newFixture(t)
	token := f.invite(t)

	f.advance(time.Hour + time.Second)

	if _, err := f.core.ValidateInvitation(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if err := f.core.SetupAccount(token, "ann1", "secret6"); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired on setup, got %v", err)
	}
}

func TestSetupAccountOneShot(t *testing.T) {
	f := newFixture(t)
	token := f.invite(t)

	if err := f.core.SetupAccount(token, "ann1", "secret6"); err != nil {
		t.Fatalf("first setup: %v", err)
	}
	if err := f.core.SetupAccount(token, "ann2", "secret7"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on second setup, got %v", err)
	}
}

func TestUsernameUniqueness(t *testing.T) {
	f := newFixture(t)
	tokenA := f.invite(t)

	if err := f.core.AddStudent("Bob", "+15559876543", "bob@x.com"); err != nil {
		t.Fatalf("add second student: %v", err)
	}
	link := f.mail.lastLink
	tokenB := link[strings.Index(link, "token=")+len("token="):]

	if err := f.core.SetupAccount(tokenA, "shared", "secret6"); err != nil {
		t.Fatalf("first setup: %v", err)
	}
	if err := f.core.SetupAccount(tokenB, "shared", "secret6"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestSetupAccountRacedUsername(t *testing.T) {
	f := newFixture(t)
	tokenA := f.invite(t)

	if err := f.core.AddStudent("Bob", "+15559876543", "bob@x.com"); err != nil {
		t.Fatalf("add second student: %v", err)
	}
	link := f.mail.lastLink
	tokenB := link[strings.Index(link, "token=")+len("token="):]

	if err := f.core.SetupAccount(tokenA, "shared", "secret6"); err != nil {
		t.Fatalf("first setup: %v", err)
	}

	// the lookup misses the concurrent winner; the unique index is the backstop
	f.store.hideUsernames = true
	if err := f.core.SetupAccount(tokenB, "shared", "secret6"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken from the write path, got %v", err)
	}
}

func TestSetupPasswordTooShort(t *testing.T) {
	f := newFixture(t)
	token := f.invite(t)

	if err := f.core.SetupAccount(token, "ann1", "short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestAddStudentDuplicate(t *testing.T) {
	f := newFixture(t)
	f.invite(t)

	if err := f.core.AddStudent("Ann", testPhone, "ann@x.com"); !errors.Is(err, ErrStudentExists) {
		t.Fatalf("expected ErrStudentExists, got %v", err)
	}
}

func TestLoginPasswordNotSet(t *testing.T) {
	f := newFixture(t)
	f.invite(t)

	// the pending profile exists but has no credentials yet
	if _, err := f.core.LoginPassword(testPhone, "whatever"); !errors.Is(err, ErrPasswordNotSet) {
		t.Fatalf("expected ErrPasswordNotSet, got %v", err)
	}
}

func TestLoginInvalidPassword(t *testing.T) {
	f := newFixture(t)
	token := f.invite(t)
	if err := f.core.SetupAccount(token, "ann1", "secret6"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if _, err := f.core.LoginPassword("ann1", "wrongpw"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

// ---------- user type resolution ----------

func TestCodeValidationResolvesStudent(t *testing.T) {
	f := newFixture(t)
	f.invite(t)

	if err := f.core.IssuePhoneCode(testPhone); err != nil {
		t.Fatalf("issue code: %v", err)
	}
	result, err := f.core.ValidatePhoneCode(testPhone, f.sms.lastCode)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.UserType != entity.RoleStudent {
		t.Fatalf("expected student, got %s", result.UserType)
	}
	if result.Name != "Ann" || result.Email != "ann@x.com" {
		t.Fatalf("unexpected profile fields %+v", result)
	}

	session, err := f.core.AuthenticateByToken(result.Token)
	if err != nil {
		t.Fatalf("authenticate issued token: %v", err)
	}
	if !session.IsStudent() || session.Subject != testPhone {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestCheckUserType(t *testing.T) {
	f := newFixture(t)
	f.invite(t)

	userType, err := f.core.CheckUserType("ann@x.com")
	if err != nil {
		t.Fatalf("check by email: %v", err)
	}
	if userType != entity.RoleStudent {
		t.Fatalf("expected student, got %s", userType)
	}

	userType, err = f.core.CheckUserType("+15550000000")
	if err != nil {
		t.Fatalf("check unknown phone: %v", err)
	}
	if userType != entity.RoleInstructor {
		t.Fatalf("expected instructor, got %s", userType)
	}
}

// ---------- lessons ----------

func TestLessonFlow(t *testing.T) {
	f := newFixture(t)
	f.invite(t)

	lesson, err := f.core.AssignLesson(testPhone, "Algebra", "intro")
	if err != nil {
		t.Fatalf("assign lesson: %v", err)
	}
	if lesson.Id == "" || lesson.Completed {
		t.Fatalf("unexpected lesson %+v", lesson)
	}

	if err = f.core.MarkLessonDone(testPhone, lesson.Id); err != nil {
		t.Fatalf("mark done: %v", err)
	}

	profile, err := f.core.MyLessons(testPhone)
	if err != nil {
		t.Fatalf("my lessons: %v", err)
	}
	if len(profile.Lessons) != 1 || !profile.Lessons[0].Completed {
		t.Fatalf("expected one completed lesson, got %+v", profile.Lessons)
	}
	if profile.Lessons[0].CompletedAt == nil {
		t.Fatal("expected completedAt to be set")
	}
}

func TestMarkLessonDoneIdempotent(t *testing.T) {
	f := newFixture(t)
	f.invite(t)

	lesson, err := f.core.AssignLesson(testPhone, "Algebra", "intro")
	if err != nil {
		t.Fatalf("assign lesson: %v", err)
	}
	if err = f.core.MarkLessonDone(testPhone, lesson.Id); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	firstAt := *f.store.students[testPhone].Lessons[0].CompletedAt

	f.advance(time.Minute)
	if err = f.core.MarkLessonDone(testPhone, lesson.Id); err != nil {
		t.Fatalf("second completion: %v", err)
	}
	after := f.store.students[testPhone].Lessons[0]
	if !after.Completed {
		t.Fatal("completion reverted")
	}
	if !after.CompletedAt.Equal(firstAt) {
		t.Fatal("completedAt changed on repeat call")
	}
}

func TestAssignLessonUnknownStudent(t *testing.T) {
	f := newFixture(t)

	if _, err := f.core.AssignLesson("+15550000000", "Algebra", "intro"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ---------- instructor CRUD ----------

func TestEditAndDeleteStudent(t *testing.T) {
	f := newFixture(t)
	f.invite(t)

	if err := f.core.EditStudent(testPhone, "Ann Lee", ""); err != nil {
		t.Fatalf("edit student: %v", err)
	}
	student, err := f.core.GetStudent(testPhone)
	if err != nil {
		t.Fatalf("get student: %v", err)
	}
	if student.Name != "Ann Lee" || student.Email != "ann@x.com" {
		t.Fatalf("partial edit went wrong: %+v", student)
	}

	if err = f.core.DeleteStudent(testPhone); err != nil {
		t.Fatalf("delete student: %v", err)
	}
	if _, err = f.core.GetStudent(testPhone); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestEditStudentUnknownPhone(t *testing.T) {
	f := newFixture(t)

	// an empty update must still report the missing document
	if err := f.core.EditStudent("+15550000000", "", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty update, got %v", err)
	}
	if err := f.core.EditStudent("+15550000000", "Ann", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPhoneKeyNormalization(t *testing.T) {
	f := newFixture(t)

	// formatted and bare variants must land on the same document
	if err := f.core.AddStudent("Ann", "+1 (555) 123-4567", "ann@x.com"); err != nil {
		t.Fatalf("add student: %v", err)
	}
	student, err := f.core.GetStudent("15551234567")
	if err != nil {
		t.Fatalf("lookup with bare digits: %v", err)
	}
	if student.Phone != testPhone {
		t.Fatalf("expected canonical key %s, got %s", testPhone, student.Phone)
	}
}

// ---------- chat ----------

func TestSendMessagePersistsAndBroadcasts(t *testing.T) {
	f := newFixture(t)

	message, err := f.core.SendMessage("+15551111111", "+15552222222", "hello")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if message.Id == "" || message.Read {
		t.Fatalf("unexpected message %+v", message)
	}
	if len(f.bus.subjects) != 1 || f.bus.subjects[0] != SubjectMessagePrefix+"+15552222222" {
		t.Fatalf("unexpected broadcast subjects %v", f.bus.subjects)
	}

	history, err := f.core.Conversation("+15552222222", "+15551111111")
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if len(history) != 1 || history[0].Message != "hello" {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestMarkAsRead(t *testing.T) {
	f := newFixture(t)

	first, _ := f.core.SendMessage("a", "b", "one")
	second, _ := f.core.SendMessage("a", "b", "two")

	if err := f.core.MarkAsRead([]string{first.Id, second.Id}); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	history, _ := f.core.Conversation("a", "b")
	for _, m := range history {
		if !m.Read {
			t.Fatalf("message %s not marked read", m.Id)
		}
	}
}

func TestGenerateAccessCodeRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := generateAccessCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("bad length: %q", code)
		}
		var n int
		if _, err = fmt.Sscanf(code, "%d", &n); err != nil {
			t.Fatalf("not numeric: %q", code)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("out of range: %d", n)
		}
	}
}
