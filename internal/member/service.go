package member

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kchsoft/gym-ledger/internal/model"
	"github.com/kchsoft/gym-ledger/internal/shared/database"
	sharedError "github.com/kchsoft/gym-ledger/internal/shared/error"
	"github.com/kchsoft/gym-ledger/internal/shared/logger"
	"github.com/kchsoft/gym-ledger/internal/shared/metrics"
	"github.com/kchsoft/gym-ledger/internal/shared/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PhotoStore is the asset store holding member photos
type PhotoStore interface {
	Validate(data []byte) error
	Save(ctx context.Context, userID string, data []byte) (string, error)
	Delete(ctx context.Context, ref string) error
}

type MemberService struct {
	db               *gorm.DB
	memberRepository *MemberRepository
	photos           PhotoStore
	feePolicy        model.FeePolicy
	metrics          *metrics.Metrics
	now              func() time.Time
}

func NewMemberService(db *gorm.DB, memberRepository *MemberRepository, photos PhotoStore, feePolicy model.FeePolicy, m *metrics.Metrics) *MemberService {
	return &MemberService{
		db:               db,
		memberRepository: memberRepository,
		photos:           photos,
		feePolicy:        feePolicy,
		metrics:          m,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// memberDates holds the parsed join/expiry dates of a validated request
type memberDates struct {
	join   datatypes.Date
	expiry datatypes.Date
}

func (s *MemberService) validate(request any, fields *MemberFields, photo *PhotoUpload) (*memberDates, error) {
	if err := validator.Struct(request); err != nil {
		return nil, err
	}

	join, err := model.ParseDate(fields.JoinDate)
	if err != nil {
		return nil, sharedError.NewFieldError(ErrValidation, "join_date", "유효한 날짜가 아닙니다.")
	}
	expiry, err := model.ParseDate(fields.ExpiryDate)
	if err != nil {
		return nil, sharedError.NewFieldError(ErrValidation, "expiry_date", "유효한 날짜가 아닙니다.")
	}

	if photo.present() {
		if err := s.photos.Validate(photo.Data); err != nil {
			return nil, sharedError.NewFieldError(ErrValidation, "photo", err.Error())
		}
	}

	return &memberDates{join: join, expiry: expiry}, nil
}

// savePhoto stores an upload before the transaction; failure is logged and the record is kept without a photo
func (s *MemberService) savePhoto(ctx context.Context, userID string, photo *PhotoUpload) *string {
	if !photo.present() {
		return nil
	}
	ref, err := s.photos.Save(ctx, userID, photo.Data)
	if err != nil {
		logger.FromContext(ctx).Error("사진 저장 실패", "user_id", userID, "error", err)
		return nil
	}
	return &ref
}

// deletePhoto is best-effort: failures are logged and swallowed
func (s *MemberService) deletePhoto(ctx context.Context, ref *string) {
	if ref == nil || *ref == "" {
		return
	}
	if err := s.photos.Delete(ctx, *ref); err != nil {
		logger.FromContext(ctx).Error("사진 삭제 실패", "path", *ref, "error", err)
	}
}

func (s *MemberService) Create(ctx context.Context, request *CreateMemberRequest) (*MemberResponse, error) {
	log := logger.FromContext(ctx)

	dates, err := s.validate(request, &request.MemberFields, request.Photo)
	if err != nil {
		log.Warn("회원 등록 검증 실패", "user_id", request.UserID, "error", err)
		return nil, err
	}

	photoRef := s.savePhoto(ctx, request.UserID, request.Photo)
	now := s.now()

	member := &model.Member{
		UserID:         request.UserID,
		Name:           request.Name,
		Contact:        request.Contact,
		CNIC:           request.CNIC,
		Location:       optional(request.Location),
		Designation:    optional(request.Designation),
		JoinDate:       dates.join,
		ExpiryDate:     dates.expiry,
		SportCategory:  model.SportCategory(request.SportCategory),
		MembershipType: model.MembershipType(request.MembershipType),
		HasTreadmill:   request.HasTreadmill,
		BaseFee:        request.BaseFee,
		TotalFee:       s.feePolicy.TotalFee(request.BaseFee, request.HasTreadmill),
		IsActive:       true,
		PhotoRef:       photoRef,
		BaseEntity:     model.BaseEntity{CreatedAt: now, UpdatedAt: now},
	}

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		exists, err := s.memberRepository.ExistsByUserID(ctx, tx, member.UserID)
		if err != nil {
			return fmt.Errorf("check user_id existence: %w", err)
		}
		if exists {
			return sharedError.NewFieldError(ErrDuplicateKey, "user_id", "이미 사용 중인 User ID입니다.")
		}

		exists, err = s.memberRepository.ExistsByCNIC(ctx, tx, member.CNIC, "")
		if err != nil {
			return fmt.Errorf("check cnic existence: %w", err)
		}
		if exists {
			return sharedError.NewFieldError(ErrDuplicateKey, "cnic", "이미 등록된 CNIC입니다.")
		}

		if err := s.memberRepository.Create(ctx, tx, member); err != nil {
			if database.IsDuplicateKey(err) {
				return fmt.Errorf("create member user_id=%s: %w", member.UserID, ErrDuplicateKey)
			}
			return fmt.Errorf("create member user_id=%s: %w", member.UserID, err)
		}
		return nil
	})
	if err != nil {
		s.deletePhoto(ctx, photoRef)
		if errors.Is(err, ErrDuplicateKey) {
			log.Warn("회원 중복", "user_id", member.UserID, "cnic", logger.MaskCNIC(member.CNIC), "error", err)
		} else {
			log.Error("회원 등록 실패", "user_id", member.UserID, "error", err)
		}
		return nil, err
	}

	s.metrics.MemberCreated()
	log.Info("회원 등록 완료", "user_id", member.UserID, "cnic", logger.MaskCNIC(member.CNIC), "total_fee", member.TotalFee)
	return toMemberResponse(member), nil
}

// Update rewrites the active member keyed by OriginalUserID.
// The user_id itself may change only while the member has no payments.
func (s *MemberService) Update(ctx context.Context, request *UpdateMemberRequest) (*MemberResponse, error) {
	log := logger.FromContext(ctx)

	dates, err := s.validate(request, &request.MemberFields, request.Photo)
	if err != nil {
		log.Warn("회원 수정 검증 실패", "user_id", request.OriginalUserID, "error", err)
		return nil, err
	}

	newPhotoRef := s.savePhoto(ctx, request.UserID, request.Photo)
	var oldPhotoRef *string
	var updated *model.Member

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		current, err := s.memberRepository.FindActiveByID(ctx, tx, request.OriginalUserID)
		if err != nil {
			if database.IsNotFound(err) {
				return fmt.Errorf("활성 회원을 찾을 수 없습니다 user_id=%s: %w", request.OriginalUserID, ErrMemberNotFound)
			}
			return fmt.Errorf("find member user_id=%s: %w", request.OriginalUserID, err)
		}

		if request.UserID != request.OriginalUserID {
			paid, err := s.memberRepository.CountPayments(ctx, tx, request.OriginalUserID)
			if err != nil {
				return fmt.Errorf("count payments user_id=%s: %w", request.OriginalUserID, err)
			}
			if paid > 0 {
				return sharedError.NewFieldError(ErrUserIDImmutable, "user_id", fmt.Sprintf("결제 %d건이 존재합니다.", paid))
			}

			exists, err := s.memberRepository.ExistsByUserID(ctx, tx, request.UserID)
			if err != nil {
				return fmt.Errorf("check user_id existence: %w", err)
			}
			if exists {
				return sharedError.NewFieldError(ErrDuplicateKey, "user_id", "이미 사용 중인 User ID입니다.")
			}
		}

		exists, err := s.memberRepository.ExistsByCNIC(ctx, tx, request.CNIC, request.OriginalUserID)
		if err != nil {
			return fmt.Errorf("check cnic existence: %w", err)
		}
		if exists {
			return sharedError.NewFieldError(ErrDuplicateKey, "cnic", "이미 등록된 CNIC입니다.")
		}

		values := map[string]any{
			"user_id":         request.UserID,
			"name":            request.Name,
			"contact":         request.Contact,
			"cnic":            request.CNIC,
			"location":        optional(request.Location),
			"designation":     optional(request.Designation),
			"join_date":       dates.join,
			"expiry_date":     dates.expiry,
			"sport_category":  request.SportCategory,
			"membership_type": request.MembershipType,
			"has_treadmill":   request.HasTreadmill,
			"base_fee":        request.BaseFee,
			"total_fee":       s.feePolicy.TotalFee(request.BaseFee, request.HasTreadmill),
			"updated_at":      s.now(),
		}
		if newPhotoRef != nil {
			values["photo_ref"] = *newPhotoRef
			oldPhotoRef = current.PhotoRef
		}

		affected, err := s.memberRepository.UpdateActive(ctx, tx, request.OriginalUserID, values)
		if err != nil {
			if database.IsDuplicateKey(err) {
				return fmt.Errorf("update member user_id=%s: %w", request.OriginalUserID, ErrDuplicateKey)
			}
			return fmt.Errorf("update member user_id=%s: %w", request.OriginalUserID, err)
		}
		if affected == 0 {
			return fmt.Errorf("update member user_id=%s: %w", request.OriginalUserID, ErrMemberNotFound)
		}

		updated, err = s.memberRepository.FindActiveByID(ctx, tx, request.UserID)
		if err != nil {
			return fmt.Errorf("reload member user_id=%s: %w", request.UserID, err)
		}
		return nil
	})
	if err != nil {
		s.deletePhoto(ctx, newPhotoRef)
		log.Warn("회원 수정 실패", "user_id", request.OriginalUserID, "error", err)
		return nil, err
	}

	// 새 사진이 커밋된 뒤에만 이전 사진 삭제
	s.deletePhoto(ctx, oldPhotoRef)

	log.Info("회원 수정 완료",
		"original_user_id", request.OriginalUserID,
		"user_id", updated.UserID,
		"total_fee", updated.TotalFee,
	)
	return toMemberResponse(updated), nil
}

// Deactivate soft-deletes an active member. The photo is removed after commit.
func (s *MemberService) Deactivate(ctx context.Context, userID string) error {
	log := logger.FromContext(ctx)
	var photoRef *string

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		member, err := s.memberRepository.FindActiveByID(ctx, tx, userID)
		if err != nil {
			if database.IsNotFound(err) {
				return fmt.Errorf("활성 회원을 찾을 수 없습니다 user_id=%s: %w", userID, ErrMemberNotFound)
			}
			return fmt.Errorf("find member user_id=%s: %w", userID, err)
		}
		photoRef = member.PhotoRef

		if _, err := s.memberRepository.Deactivate(ctx, tx, userID, s.now()); err != nil {
			return fmt.Errorf("deactivate member user_id=%s: %w", userID, err)
		}
		return nil
	})
	if err != nil {
		log.Warn("회원 비활성화 실패", "user_id", userID, "error", err)
		return err
	}

	s.deletePhoto(ctx, photoRef)
	s.metrics.MemberDeactivated()
	log.Info("회원 비활성화 완료", "user_id", userID)
	return nil
}

// ReconcileFees rewrites total_fee on every stored member whose value diverges
// from the fee policy and returns the number of rows changed.
func (s *MemberService) ReconcileFees(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)
	changed := 0

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		members, err := s.memberRepository.FindAll(ctx, tx)
		if err != nil {
			return fmt.Errorf("load members: %w", err)
		}

		now := s.now()
		for i := range members {
			member := &members[i]
			if !member.ApplyFee(s.feePolicy) {
				continue
			}
			if err := s.memberRepository.UpdateTotalFee(ctx, tx, member.UserID, member.TotalFee, now); err != nil {
				return fmt.Errorf("update total_fee user_id=%s: %w", member.UserID, err)
			}
			changed++
		}
		return nil
	})
	if err != nil {
		log.Error("요금 재계산 실패", "error", err)
		return 0, err
	}

	s.metrics.Reconciled(changed)
	if changed > 0 {
		log.Info("요금 재계산 완료", "changed", changed)
	}
	return changed, nil
}

// FindActive returns the active member with userID
func (s *MemberService) FindActive(ctx context.Context, userID string) (*MemberResponse, error) {
	member, err := s.memberRepository.FindActiveByID(ctx, s.db, userID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("활성 회원을 찾을 수 없습니다 user_id=%s: %w", userID, ErrMemberNotFound)
		}
		return nil, fmt.Errorf("find member user_id=%s: %w", userID, err)
	}
	return toMemberResponse(member), nil
}

func (s *MemberService) FindActiveByCNIC(ctx context.Context, cnic string) (*MemberResponse, error) {
	member, err := s.memberRepository.FindActiveByCNIC(ctx, s.db, cnic)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("활성 회원을 찾을 수 없습니다 cnic=%s: %w", logger.MaskCNIC(cnic), ErrMemberNotFound)
		}
		return nil, fmt.Errorf("find member by cnic: %w", err)
	}
	return toMemberResponse(member), nil
}

// Search matches term exactly against user_id or cnic of active members
func (s *MemberService) Search(ctx context.Context, term string) ([]MemberResponse, error) {
	members, err := s.memberRepository.SearchActive(ctx, s.db, term)
	if err != nil {
		return nil, fmt.Errorf("search members: %w", err)
	}
	return toMemberResponses(members), nil
}

func (s *MemberService) ListActive(ctx context.Context) ([]MemberResponse, error) {
	members, err := s.memberRepository.ListActive(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return toMemberResponses(members), nil
}

// Get returns the member regardless of is_active, for history flows
func (s *MemberService) Get(ctx context.Context, userID string) (*MemberResponse, error) {
	member, err := s.memberRepository.FindByID(ctx, s.db, userID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("회원을 찾을 수 없습니다 user_id=%s: %w", userID, ErrMemberNotFound)
		}
		return nil, fmt.Errorf("find member user_id=%s: %w", userID, err)
	}
	return toMemberResponse(member), nil
}
