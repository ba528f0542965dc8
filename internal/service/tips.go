package service

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ekene/oryo/internal/database/repository"
	"github.com/ekene/oryo/internal/logging"
	"github.com/ekene/oryo/internal/tip"
	"github.com/ekene/oryo/internal/wallet"
)

// TipService submits tips through the wallet and keeps the local history.
type TipService struct {
	Wallet   wallet.Wallet
	Tips     *repository.TipRepo
	Creators *repository.CreatorRepo
	Posts    *repository.PostRepo
	Logger   *log.Logger
	Now      func() time.Time
}

// Send hands req to the wallet on behalf of sender. Every attempt, including
// cancelled ones, is written to the tip history.
func (s *TipService) Send(ctx context.Context, sender string, req tip.Request) (tip.Receipt, error) {
	if s.Wallet == nil {
		return tip.Receipt{}, wallet.ErrNoWallet
	}
	if sender == "" {
		return tip.Receipt{}, wallet.ErrNotConnected
	}
	started := s.now()
	rec, err := s.Wallet.SendTip(ctx, sender, req)

	row := repository.TipRecord{
		ID:            uuid.NewString(),
		Sender:        sender,
		RecipientID:   req.RecipientID,
		RecipientName: req.RecipientName,
		ToAddress:     req.To,
		Asset:         req.Asset,
		Amount:        req.Amount,
		RawAmount:     req.RawAmount,
		Message:       req.Message,
		Status:        rec.Status,
		TxHash:        rec.TxHash,
		CreatedAt:     started,
	}
	if err != nil {
		row.Status = tip.StatusFailed
		row.Error = err.Error()
	}

	// the caller's context may already be cancelled; the record still goes in
	bg := context.WithoutCancel(ctx)
	if ierr := s.Tips.Insert(bg, row); ierr != nil {
		s.logger().Warn("record tip", "id", row.ID, "err", ierr)
	}
	if err != nil {
		s.logger().Info("tip failed", "to", req.RecipientName, "asset", req.Asset, "amount", req.Amount, "kind", tip.Classify(err), "err", err)
		return tip.Receipt{}, err
	}

	if req.RecipientID != "" && s.Creators != nil {
		if cerr := s.Creators.AddTip(bg, req.RecipientID); cerr != nil {
			s.logger().Warn("bump creator tips", "creator", req.RecipientID, "err", cerr)
		}
	}
	if req.PostID != "" && s.Posts != nil {
		if perr := s.Posts.AddTip(bg, req.PostID); perr != nil {
			s.logger().Warn("bump post tips", "post", req.PostID, "err", perr)
		}
	}
	s.logger().Info("tip sent", "to", req.RecipientName, "asset", req.Asset, "amount", req.Amount, "status", rec.Status, "tx", rec.TxHash)
	return rec, nil
}

// History lists the sender's recent tips.
func (s *TipService) History(ctx context.Context, sender string, limit int) ([]repository.TipRecord, error) {
	if sender == "" {
		return nil, nil
	}
	return s.Tips.Recent(ctx, sender, limit)
}

func (s *TipService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *TipService) logger() *log.Logger {
	if s.Logger == nil {
		return logging.Discard()
	}
	return s.Logger
}
