package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"classroom/entity"
	"classroom/impl/core"
	"classroom/internal/config"
)

const (
	collectionStudents    = "students"
	collectionUsers       = "users"
	collectionAccessCodes = "accessCodes"
	collectionMessages    = "messages"
)

type MongoDB struct {
	ctx           context.Context
	clientOptions *options.ClientOptions
	database      string
}

func NewMongoClient(conf *config.Config) *MongoDB {
	if !conf.Mongo.Enabled {
		return nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		ctx:           context.Background(),
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
	}
	return client
}

func (m *MongoDB) connect() (*mongo.Client, error) {
	connection, err := mongo.Connect(m.ctx, m.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	return connection, nil
}

func (m *MongoDB) disconnect(connection *mongo.Client) {
	_ = connection.Disconnect(m.ctx)
}

// EnsureIndexes creates the indexes the store's semantics depend on: the
// unique username index is the backstop for concurrent account setups, and
// the TTL index clears orphaned access codes.
func (m *MongoDB) EnsureIndexes() error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	students := connection.Database(m.database).Collection(collectionStudents)
	_, err = students.Indexes().CreateMany(m.ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("student indexes: %w", err)
	}

	codes := connection.Database(m.database).Collection(collectionAccessCodes)
	_, err = codes.Indexes().CreateOne(m.ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("access code index: %w", err)
	}
	return nil
}

// --- access codes ---

// SaveAccessCode upserts by identifier so a fresh code always replaces
// the previous live one.
func (m *MongoDB) SaveAccessCode(code *entity.AccessCode) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionAccessCodes)
	filter := bson.D{{Key: "identifier", Value: code.Identifier}}
	update := bson.D{{Key: "$set", Value: code}}
	opts := options.Update().SetUpsert(true)
	_, err = collection.UpdateOne(m.ctx, filter, update, opts)
	return err
}

func (m *MongoDB) GetAccessCode(identifier string) (*entity.AccessCode, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionAccessCodes)
	filter := bson.D{{Key: "identifier", Value: identifier}}
	var code entity.AccessCode
	err = collection.FindOne(m.ctx, filter).Decode(&code)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}
	return &code, nil
}

func (m *MongoDB) DeleteAccessCode(identifier string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionAccessCodes)
	filter := bson.D{{Key: "identifier", Value: identifier}}
	_, err = collection.DeleteOne(m.ctx, filter)
	return err
}

// --- students ---

func (m *MongoDB) InsertStudent(student *entity.Student) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionStudents)
	_, err = collection.InsertOne(m.ctx, student)
	return err
}

func (m *MongoDB) findStudent(filter bson.D) (*entity.Student, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionStudents)
	var student entity.Student
	err = collection.FindOne(m.ctx, filter).Decode(&student)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}
	return &student, nil
}

func (m *MongoDB) GetStudent(phone string) (*entity.Student, error) {
	return m.findStudent(bson.D{{Key: "phone", Value: phone}})
}

func (m *MongoDB) GetStudentByEmail(email string) (*entity.Student, error) {
	return m.findStudent(bson.D{{Key: "email", Value: email}})
}

func (m *MongoDB) GetStudentByUsername(username string) (*entity.Student, error) {
	return m.findStudent(bson.D{{Key: "username", Value: username}})
}

func (m *MongoDB) GetStudentBySetupToken(token string) (*entity.Student, error) {
	return m.findStudent(bson.D{{Key: "setup_token", Value: token}})
}

func (m *MongoDB) ListStudents() ([]*entity.Student, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionStudents)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := collection.Find(m.ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)

	var students []*entity.Student
	err = cursor.All(m.ctx, &students)
	if err != nil {
		return nil, err
	}
	return students, nil
}

// UpdateStudent sets only the provided fields; empty strings leave the
// stored value untouched.
func (m *MongoDB) UpdateStudent(phone, name, email string) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	fields := bson.D{}
	if name != "" {
		fields = append(fields, bson.E{Key: "name", Value: name})
	}
	if email != "" {
		fields = append(fields, bson.E{Key: "email", Value: email})
	}

	collection := connection.Database(m.database).Collection(collectionStudents)
	filter := bson.D{{Key: "phone", Value: phone}}
	if len(fields) == 0 {
		// nothing to change, but an unknown phone must still report no match
		err = collection.FindOne(m.ctx, filter).Err()
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	}
	update := bson.D{{Key: "$set", Value: fields}}
	result, err := collection.UpdateOne(m.ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (m *MongoDB) DeleteStudent(phone string) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionStudents)
	filter := bson.D{{Key: "phone", Value: phone}}
	result, err := collection.DeleteOne(m.ctx, filter)
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// PushLesson appends atomically; concurrent assignments for the same
// student never overwrite each other.
func (m *MongoDB) PushLesson(phone string, lesson *entity.Lesson) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionStudents)
	filter := bson.D{{Key: "phone", Value: phone}}
	update := bson.D{{Key: "$push", Value: bson.D{{Key: "lessons", Value: lesson}}}}
	result, err := collection.UpdateOne(m.ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// CompleteLesson flips the matched embedded element only. The array filter
// excludes already-completed lessons, so repeating the call changes nothing
// and never reverts.
func (m *MongoDB) CompleteLesson(phone, lessonId string, at time.Time) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionStudents)
	filter := bson.D{{Key: "phone", Value: phone}, {Key: "lessons.id", Value: lessonId}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "lessons.$[l].completed", Value: true},
		{Key: "lessons.$[l].completed_at", Value: at},
	}}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.D{{Key: "l.id", Value: lessonId}, {Key: "l.completed", Value: false}}},
	})
	result, err := collection.UpdateOne(m.ctx, filter, update, opts)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// ConsumeSetupToken performs the one-shot account setup transition. The
// filter requires a live token, so a replay or an expired invitation
// matches nothing.
func (m *MongoDB) ConsumeSetupToken(token, username, passwordHash string, now time.Time) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionStudents)
	filter := bson.D{
		{Key: "setup_token", Value: token},
		{Key: "setup_token_expires", Value: bson.D{{Key: "$gt", Value: now}}},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "username", Value: username},
			{Key: "password_hash", Value: passwordHash},
			{Key: "account_setup", Value: true},
		}},
		{Key: "$unset", Value: bson.D{
			{Key: "setup_token", Value: ""},
			{Key: "setup_token_expires", Value: ""},
		}},
	}
	result, err := collection.UpdateOne(m.ctx, filter, update)
	if mongo.IsDuplicateKeyError(err) {
		// the unique username index caught a setup that raced past the
		// application-level check
		return false, core.ErrUsernameTaken
	}
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// --- users ---

func (m *MongoDB) GetUserRecord(identifier string) (*entity.User, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionUsers)
	filter := bson.D{{Key: "identifier", Value: identifier}}
	var user entity.User
	err = collection.FindOne(m.ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}
	return &user, nil
}

func (m *MongoDB) SaveUserRecord(user *entity.User) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionUsers)
	filter := bson.D{{Key: "identifier", Value: user.Identifier}}
	update := bson.D{{Key: "$set", Value: user}}
	opts := options.Update().SetUpsert(true)
	_, err = collection.UpdateOne(m.ctx, filter, update, opts)
	return err
}

// --- messages ---

func (m *MongoDB) SaveMessage(message *entity.ChatMessage) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionMessages)
	_, err = collection.InsertOne(m.ctx, message)
	return err
}

// GetConversation returns the messages between two parties in either
// direction, oldest first.
func (m *MongoDB) GetConversation(a, b string) ([]*entity.ChatMessage, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionMessages)
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "from", Value: a}, {Key: "to", Value: b}},
		bson.D{{Key: "from", Value: b}, {Key: "to", Value: a}},
	}}}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)

	var messages []*entity.ChatMessage
	err = cursor.All(m.ctx, &messages)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (m *MongoDB) MarkMessagesRead(ids []string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionMessages)
	filter := bson.D{{Key: "id", Value: bson.D{{Key: "$in", Value: ids}}}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "read", Value: true}}}}
	_, err = collection.UpdateMany(m.ctx, filter, update)
	return err
}
