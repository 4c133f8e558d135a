package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tcon/auth-user-service/internal/core/domain"
)

const userCollection = "users"

// MongoUserRepository is the credential store backed by the users
// collection. Security-state mutations are expressed as single server-side
// updates (aggregation-pipeline updates where a conditional transition is
// needed) so concurrent login attempts never lose increments to stale
// in-memory copies.
type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(userCollection)}
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	FirstName    string             `bson:"first_name,omitempty"`
	LastName     string             `bson:"last_name,omitempty"`
	PhoneNumber  string             `bson:"phone_number,omitempty"`
	Role         string             `bson:"role"`
	Status       string             `bson:"status"`

	TwoFactorEnabled bool   `bson:"two_factor_enabled"`
	TwoFactorSecret  string `bson:"two_factor_secret,omitempty"`

	FailedLoginAttempts int        `bson:"failed_login_attempts"`
	LockedUntil         *time.Time `bson:"locked_until,omitempty"`
	LastLoginAt         *time.Time `bson:"last_login_at,omitempty"`

	PasswordResetToken       string     `bson:"password_reset_token,omitempty"`
	PasswordResetTokenExpiry *time.Time `bson:"password_reset_token_expiry,omitempty"`

	EmailVerified                bool       `bson:"email_verified"`
	EmailVerificationToken       string     `bson:"email_verification_token,omitempty"`
	EmailVerificationTokenExpiry *time.Time `bson:"email_verification_token_expiry,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toDoc(u *domain.User) *mongoUser {
	return &mongoUser{
		Email:                        u.Email,
		PasswordHash:                 u.PasswordHash,
		FirstName:                    u.FirstName,
		LastName:                     u.LastName,
		PhoneNumber:                  u.PhoneNumber,
		Role:                         string(u.Role),
		Status:                       string(u.Status),
		TwoFactorEnabled:             u.TwoFactorEnabled,
		TwoFactorSecret:              u.TwoFactorSecret,
		FailedLoginAttempts:          u.FailedLoginAttempts,
		LockedUntil:                  u.LockedUntil,
		LastLoginAt:                  u.LastLoginAt,
		PasswordResetToken:           u.PasswordResetToken,
		PasswordResetTokenExpiry:     u.PasswordResetTokenExpiry,
		EmailVerified:                u.EmailVerified,
		EmailVerificationToken:       u.EmailVerificationToken,
		EmailVerificationTokenExpiry: u.EmailVerificationTokenExpiry,
		CreatedAt:                    u.CreatedAt,
		UpdatedAt:                    u.UpdatedAt,
	}
}

func (m *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:                           m.ID.Hex(),
		Email:                        m.Email,
		PasswordHash:                 m.PasswordHash,
		FirstName:                    m.FirstName,
		LastName:                     m.LastName,
		PhoneNumber:                  m.PhoneNumber,
		Role:                         domain.UserRole(m.Role),
		Status:                       domain.UserStatus(m.Status),
		TwoFactorEnabled:             m.TwoFactorEnabled,
		TwoFactorSecret:              m.TwoFactorSecret,
		FailedLoginAttempts:          m.FailedLoginAttempts,
		LockedUntil:                  m.LockedUntil,
		LastLoginAt:                  m.LastLoginAt,
		PasswordResetToken:           m.PasswordResetToken,
		PasswordResetTokenExpiry:     m.PasswordResetTokenExpiry,
		EmailVerified:                m.EmailVerified,
		EmailVerificationToken:       m.EmailVerificationToken,
		EmailVerificationTokenExpiry: m.EmailVerificationTokenExpiry,
		CreatedAt:                    m.CreatedAt,
		UpdatedAt:                    m.UpdatedAt,
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrUserNotFound
	}
	return oid, nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := toDoc(user)

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *MongoUserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	oid, err := objectID(user.ID)
	if err != nil {
		return nil, err
	}

	doc := toDoc(user)
	doc.ID = oid
	doc.UpdatedAt = time.Now().UTC()

	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("replace user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, bson.M{"phone_number": phone})
}

func (r *MongoUserRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

// RecordLoginFailure increments the failure counter and, once it reaches
// threshold, sets the lock expiry — all inside one aggregation-pipeline
// update so racing attempts each count exactly once. The LOCKED status is
// only written over ACTIVE; an administratively suspended or banned account
// keeps its status so the lockout cycle cannot restore it to ACTIVE.
func (r *MongoUserRepository) RecordLoginFailure(ctx context.Context, id string, threshold int, lockFor time.Duration) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	lockedCond := bson.D{{Key: "$gte", Value: bson.A{"$failed_login_attempts", threshold}}}
	lockedFromActiveCond := bson.D{{Key: "$and", Value: bson.A{
		lockedCond,
		bson.D{{Key: "$eq", Value: bson.A{"$status", string(domain.StatusActive)}}},
	}}}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "failed_login_attempts", Value: bson.D{{Key: "$add", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$failed_login_attempts", 0}}}, 1,
			}}}},
			{Key: "updated_at", Value: now},
		}}},
		// The second stage sees the incremented counter.
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "locked_until", Value: bson.D{{Key: "$cond", Value: bson.A{
				lockedCond, now.Add(lockFor), "$locked_until",
			}}}},
			{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
				lockedFromActiveCond, string(domain.StatusLocked), "$status",
			}}}},
		}}},
	}

	var doc mongoUser
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("record login failure: %w", err)
	}
	return doc.toDomain(), nil
}

// ClearLoginFailures resets the counter and lock expiry, restoring ACTIVE
// status only when the account was LOCKED by the lockout mechanism.
func (r *MongoUserRepository) ClearLoginFailures(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "failed_login_attempts", Value: 0},
			{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$status", string(domain.StatusLocked)}}},
				string(domain.StatusActive), "$status",
			}}}},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
		bson.D{{Key: "$unset", Value: "locked_until"}},
	}

	res, err := r.coll.UpdateByID(ctx, oid, pipeline)
	if err != nil {
		return fmt.Errorf("clear login failures: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *MongoUserRepository) UpdateTwoFactor(ctx context.Context, id string, enabled bool, secret string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"two_factor_enabled": enabled,
			"updated_at":         time.Now().UTC(),
		},
	}
	if secret != "" {
		update["$set"].(bson.M)["two_factor_secret"] = secret
	} else {
		update["$unset"] = bson.M{"two_factor_secret": ""}
	}

	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("update two-factor state: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *MongoUserRepository) SetPasswordResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"password_reset_token":        token,
		"password_reset_token_expiry": expiry.UTC(),
		"updated_at":                  time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ConsumeResetToken redeems an unexpired reset token in one atomic update:
// the filter matches only a live token, and the update sets the new hash,
// clears the token pair and forgives any lockout. A second redemption finds
// no matching document.
func (r *MongoUserRepository) ConsumeResetToken(ctx context.Context, token, newPasswordHash string) (*domain.User, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"password_reset_token":        token,
		"password_reset_token_expiry": bson.M{"$gt": now},
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "password_hash", Value: newPasswordHash},
			{Key: "failed_login_attempts", Value: 0},
			{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$status", string(domain.StatusLocked)}}},
				string(domain.StatusActive), "$status",
			}}}},
			{Key: "updated_at", Value: now},
		}}},
		bson.D{{Key: "$unset", Value: bson.A{
			"password_reset_token", "password_reset_token_expiry", "locked_until",
		}}},
	}

	var doc mongoUser
	err := r.coll.FindOneAndUpdate(ctx, filter, pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("consume reset token: %w", err)
	}
	return doc.toDomain(), nil
}

// ConsumeEmailVerificationToken redeems an unexpired verification token the
// same way, marking the email verified and promoting a pending account.
func (r *MongoUserRepository) ConsumeEmailVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"email_verification_token":        token,
		"email_verification_token_expiry": bson.M{"$gt": now},
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "email_verified", Value: true},
			{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$status", string(domain.StatusPendingVerification)}}},
				string(domain.StatusActive), "$status",
			}}}},
			{Key: "updated_at", Value: now},
		}}},
		bson.D{{Key: "$unset", Value: bson.A{
			"email_verification_token", "email_verification_token_expiry",
		}}},
	}

	var doc mongoUser
	err := r.coll.FindOneAndUpdate(ctx, filter, pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrVerificationTokenInvalid
		}
		return nil, fmt.Errorf("consume verification token: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoUserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	_, err = r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"last_login_at": at.UTC()}})
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}
