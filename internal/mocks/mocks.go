package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"session-service/internal/models"
	"session-service/internal/pagination"
	"session-service/internal/repositories"
)

type SessionRepositoryMock struct {
	mock.Mock
}

func (m *SessionRepositoryMock) CreateSession(ctx context.Context, groupID int, title, description string, startTime time.Time, durationMinutes int, createdBy int) (models.Session, error) {
	args := m.Called(ctx, groupID, title, description, startTime, durationMinutes, createdBy)
	var session models.Session
	if val := args.Get(0); val != nil {
		session = val.(models.Session)
	}
	return session, args.Error(1)
}

func (m *SessionRepositoryMock) GetSession(ctx context.Context, sessionID int) (models.Session, error) {
	args := m.Called(ctx, sessionID)
	var session models.Session
	if val := args.Get(0); val != nil {
		session = val.(models.Session)
	}
	return session, args.Error(1)
}

func (m *SessionRepositoryMock) ListByGroupBefore(ctx context.Context, groupID int, before *time.Time, limit int) ([]models.Session, error) {
	args := m.Called(ctx, groupID, before, limit)
	var sessions []models.Session
	if val := args.Get(0); val != nil {
		sessions = val.([]models.Session)
	}
	return sessions, args.Error(1)
}

func (m *SessionRepositoryMock) ListUnfinished(ctx context.Context) ([]models.Session, error) {
	args := m.Called(ctx)
	var sessions []models.Session
	if val := args.Get(0); val != nil {
		sessions = val.([]models.Session)
	}
	return sessions, args.Error(1)
}

func (m *SessionRepositoryMock) UpdateStatus(ctx context.Context, sessionID int, from, to models.SessionStatus) (bool, error) {
	args := m.Called(ctx, sessionID, from, to)
	return args.Bool(0), args.Error(1)
}

type ParticipantRepositoryMock struct {
	mock.Mock
}

func (m *ParticipantRepositoryMock) Join(ctx context.Context, sessionID, userID int) (models.Participant, error) {
	args := m.Called(ctx, sessionID, userID)
	var participant models.Participant
	if val := args.Get(0); val != nil {
		participant = val.(models.Participant)
	}
	return participant, args.Error(1)
}

func (m *ParticipantRepositoryMock) Leave(ctx context.Context, sessionID, userID int) error {
	args := m.Called(ctx, sessionID, userID)
	return args.Error(0)
}

func (m *ParticipantRepositoryMock) IsActive(ctx context.Context, sessionID, userID int) (bool, error) {
	args := m.Called(ctx, sessionID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ParticipantRepositoryMock) ListActiveBefore(ctx context.Context, sessionID int, before *time.Time, limit int) ([]models.Participant, error) {
	args := m.Called(ctx, sessionID, before, limit)
	var participants []models.Participant
	if val := args.Get(0); val != nil {
		participants = val.([]models.Participant)
	}
	return participants, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateSessionMessage(ctx context.Context, sessionID, senderID int, content string) (models.SessionMessage, error) {
	args := m.Called(ctx, sessionID, senderID, content)
	var msg models.SessionMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.SessionMessage)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListBySessionBefore(ctx context.Context, sessionID int, before *time.Time, limit int) ([]models.SessionMessage, error) {
	args := m.Called(ctx, sessionID, before, limit)
	var msgs []models.SessionMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.SessionMessage)
	}
	return msgs, args.Error(1)
}

type GroupRepositoryMock struct {
	mock.Mock
}

func (m *GroupRepositoryMock) CreateGroup(ctx context.Context, ownerID int, name string, memberIDs []int) (models.Group, error) {
	args := m.Called(ctx, ownerID, name, memberIDs)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) GetGroup(ctx context.Context, groupID int) (models.Group, error) {
	args := m.Called(ctx, groupID)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) IsMember(ctx context.Context, groupID, userID int) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *GroupRepositoryMock) MemberIDs(ctx context.Context, groupID int) ([]int, error) {
	args := m.Called(ctx, groupID)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

type PostRepositoryMock struct {
	mock.Mock
}

func (m *PostRepositoryMock) CreatePost(ctx context.Context, userID int, caption, mediaURL string) (models.Post, error) {
	args := m.Called(ctx, userID, caption, mediaURL)
	var post models.Post
	if val := args.Get(0); val != nil {
		post = val.(models.Post)
	}
	return post, args.Error(1)
}

func (m *PostRepositoryMock) GetPost(ctx context.Context, postID int) (models.Post, error) {
	args := m.Called(ctx, postID)
	var post models.Post
	if val := args.Get(0); val != nil {
		post = val.(models.Post)
	}
	return post, args.Error(1)
}

func (m *PostRepositoryMock) ListFeedBefore(ctx context.Context, before *int, limit int) ([]models.Post, error) {
	args := m.Called(ctx, before, limit)
	var posts []models.Post
	if val := args.Get(0); val != nil {
		posts = val.([]models.Post)
	}
	return posts, args.Error(1)
}

func (m *PostRepositoryMock) ListByUsersBefore(ctx context.Context, userIDs []int, before *int, limit int) ([]models.Post, error) {
	args := m.Called(ctx, userIDs, before, limit)
	var posts []models.Post
	if val := args.Get(0); val != nil {
		posts = val.([]models.Post)
	}
	return posts, args.Error(1)
}

func (m *PostRepositoryMock) ListByUserBefore(ctx context.Context, userID int, before *int, limit int) ([]models.Post, error) {
	args := m.Called(ctx, userID, before, limit)
	var posts []models.Post
	if val := args.Get(0); val != nil {
		posts = val.([]models.Post)
	}
	return posts, args.Error(1)
}

func (m *PostRepositoryMock) LikePost(ctx context.Context, postID, userID int) error {
	args := m.Called(ctx, postID, userID)
	return args.Error(0)
}

func (m *PostRepositoryMock) UnlikePost(ctx context.Context, postID, userID int) error {
	args := m.Called(ctx, postID, userID)
	return args.Error(0)
}

func (m *PostRepositoryMock) LikeCount(ctx context.Context, postID int) (int, error) {
	args := m.Called(ctx, postID)
	return args.Int(0), args.Error(1)
}

type CommentRepositoryMock struct {
	mock.Mock
}

func (m *CommentRepositoryMock) CreateComment(ctx context.Context, postID, userID int, content string) (models.PostComment, error) {
	args := m.Called(ctx, postID, userID, content)
	var comment models.PostComment
	if val := args.Get(0); val != nil {
		comment = val.(models.PostComment)
	}
	return comment, args.Error(1)
}

func (m *CommentRepositoryMock) ListByPostBefore(ctx context.Context, postID int, before *int, limit int) ([]models.PostComment, error) {
	args := m.Called(ctx, postID, before, limit)
	var comments []models.PostComment
	if val := args.Get(0); val != nil {
		comments = val.([]models.PostComment)
	}
	return comments, args.Error(1)
}

type FollowRepositoryMock struct {
	mock.Mock
}

func (m *FollowRepositoryMock) Follow(ctx context.Context, followerID, followeeID int) error {
	args := m.Called(ctx, followerID, followeeID)
	return args.Error(0)
}

func (m *FollowRepositoryMock) Unfollow(ctx context.Context, followerID, followeeID int) error {
	args := m.Called(ctx, followerID, followeeID)
	return args.Error(0)
}

func (m *FollowRepositoryMock) FollowingIDs(ctx context.Context, followerID int) ([]int, error) {
	args := m.Called(ctx, followerID)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

func (m *FollowRepositoryMock) Stats(ctx context.Context, userID int) (models.FollowStats, error) {
	args := m.Called(ctx, userID)
	var stats models.FollowStats
	if val := args.Get(0); val != nil {
		stats = val.(models.FollowStats)
	}
	return stats, args.Error(1)
}

type BroadcasterMock struct {
	mock.Mock
}

func (m *BroadcasterMock) BroadcastMessage(sessionID int, msg models.SessionMessage) {
	m.Called(sessionID, msg)
}

type MessageRelayMock struct {
	mock.Mock
}

func (m *MessageRelayMock) Send(ctx context.Context, sessionID, senderID int, content string) (models.SessionMessage, error) {
	args := m.Called(ctx, sessionID, senderID, content)
	var msg models.SessionMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.SessionMessage)
	}
	return msg, args.Error(1)
}

func (m *MessageRelayMock) History(ctx context.Context, sessionID int, cursor *time.Time, limit int) (pagination.Page[models.SessionMessage, time.Time], error) {
	args := m.Called(ctx, sessionID, cursor, limit)
	var page pagination.Page[models.SessionMessage, time.Time]
	if val := args.Get(0); val != nil {
		page = val.(pagination.Page[models.SessionMessage, time.Time])
	}
	return page, args.Error(1)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ repositories.SessionRepository = (*SessionRepositoryMock)(nil)
var _ repositories.ParticipantRepository = (*ParticipantRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.GroupRepository = (*GroupRepositoryMock)(nil)
var _ repositories.PostRepository = (*PostRepositoryMock)(nil)
var _ repositories.CommentRepository = (*CommentRepositoryMock)(nil)
var _ repositories.FollowRepository = (*FollowRepositoryMock)(nil)
var _ interface {
	BroadcastMessage(int, models.SessionMessage)
} = (*BroadcasterMock)(nil)
