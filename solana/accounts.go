package ogc_reserve

import (
	"encoding/binary"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Account discriminators: sha256("account:<Name>")[:8].
var (
	Account_GlobalDataAccount = [8]byte{187, 155, 184, 162, 121, 9, 202, 5}
	Account_UserDataAccount   = [8]byte{50, 99, 110, 38, 6, 215, 189, 15}
	Account_LockAccount       = [8]byte{223, 64, 71, 124, 255, 86, 118, 192}
	Account_EpochAccount      = [8]byte{206, 7, 143, 108, 95, 249, 190, 24}
	Account_VoteAccount       = [8]byte{203, 238, 154, 106, 200, 131, 0, 41}
)

// Byte offsets of the owner field, used as memcmp filters when scanning.
const (
	lockAccountOwnerOffset = 24
	voteAccountOwnerOffset = 8
)

var ErrInvalidDiscriminator = errors.New("invalid account discriminator")

func readDiscriminator(decoder *bin.Decoder, want [8]byte, name string) error {
	discriminator, err := decoder.ReadDiscriminator()
	if err != nil {
		return fmt.Errorf("failed to read %s discriminator: %w", name, err)
	}
	if !discriminator.Equal(want[:]) {
		return fmt.Errorf("%w: %s expected %v, got %v", ErrInvalidDiscriminator, name, want, discriminator[:])
	}
	return nil
}

// GlobalDataAccount holds the program-wide parameters and the current epoch.
type GlobalDataAccount struct {
	Authority     solana.PublicKey
	OgcMint       solana.PublicKey
	OggMint       solana.PublicKey
	Epoch         uint64
	EpochEndTime  int64
	EpochLength   uint64
	EpochLockTime uint64
	RewardPercent uint64
}

func (obj GlobalDataAccount) MarshalWithEncoder(encoder *bin.Encoder) (err error) {
	if err = encoder.WriteBytes(Account_GlobalDataAccount[:], false); err != nil {
		return err
	}
	for _, v := range []interface{}{obj.Authority, obj.OgcMint, obj.OggMint} {
		if err = encoder.Encode(v); err != nil {
			return err
		}
	}
	if err = encoder.WriteUint64(obj.Epoch, binary.LittleEndian); err != nil {
		return err
	}
	if err = encoder.WriteInt64(obj.EpochEndTime, binary.LittleEndian); err != nil {
		return err
	}
	if err = encoder.WriteUint64(obj.EpochLength, binary.LittleEndian); err != nil {
		return err
	}
	if err = encoder.WriteUint64(obj.EpochLockTime, binary.LittleEndian); err != nil {
		return err
	}
	return encoder.WriteUint64(obj.RewardPercent, binary.LittleEndian)
}

func (obj *GlobalDataAccount) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	if err = readDiscriminator(decoder, Account_GlobalDataAccount, "GlobalDataAccount"); err != nil {
		return err
	}
	if err = decoder.Decode(&obj.Authority); err != nil {
		return err
	}
	if err = decoder.Decode(&obj.OgcMint); err != nil {
		return err
	}
	if err = decoder.Decode(&obj.OggMint); err != nil {
		return err
	}
	if obj.Epoch, err = decoder.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	if obj.EpochEndTime, err = decoder.ReadInt64(binary.LittleEndian); err != nil {
		return err
	}
	if obj.EpochLength, err = decoder.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	if obj.EpochLockTime, err = decoder.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	obj.RewardPercent, err = decoder.ReadUint64(binary.LittleEndian)
	return err
}

// UserDataAccount tracks how much OGG a wallet has locked in total.
type UserDataAccount struct {
	Owner  solana.PublicKey
	Amount uint64
}

func (obj UserDataAccount) MarshalWithEncoder(encoder *bin.Encoder) (err error) {
	if err = encoder.WriteBytes(Account_UserDataAccount[:], false); err != nil {
		return err
	}
	if err = encoder.Encode(obj.Owner); err != nil {
		return err
	}
	return encoder.WriteUint64(obj.Amount, binary.LittleEndian)
}

func (obj *UserDataAccount) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	if err = readDiscriminator(decoder, Account_UserDataAccount, "UserDataAccount"); err != nil {
		return err
	}
	if err = decoder.Decode(&obj.Owner); err != nil {
		return err
	}
	obj.Amount, err = decoder.ReadUint64(binary.LittleEndian)
	return err
}

// LockAccount is one deposit of OGG, locked during Epoch and releasable from UnlockEpoch.
type LockAccount struct {
	Epoch       uint64
	UnlockEpoch uint64
	Owner       solana.PublicKey
	Amount      uint64
}

func (obj LockAccount) MarshalWithEncoder(encoder *bin.Encoder) (err error) {
	if err = encoder.WriteBytes(Account_LockAccount[:], false); err != nil {
		return err
	}
	if err = encoder.WriteUint64(obj.Epoch, binary.LittleEndian); err != nil {
		return err
	}
	if err = encoder.WriteUint64(obj.UnlockEpoch, binary.LittleEndian); err != nil {
		return err
	}
	if err = encoder.Encode(obj.Owner); err != nil {
		return err
	}
	return encoder.WriteUint64(obj.Amount, binary.LittleEndian)
}

func (obj *LockAccount) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	if err = readDiscriminator(decoder, Account_LockAccount, "LockAccount"); err != nil {
		return err
	}
	if obj.Epoch, err = decoder.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	if obj.UnlockEpoch, err = decoder.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	if err = decoder.Decode(&obj.Owner); err != nil {
		return err
	}
	obj.Amount, err = decoder.ReadUint64(binary.LittleEndian)
	return err
}

// EpochAccount holds the vote tally of an epoch. Winner and Reward are set
// when the next epoch is opened.
type EpochAccount struct {
	Epoch  uint64
	Fields []uint64
	Winner uint64
	Reward uint64
}

func (obj EpochAccount) MarshalWithEncoder(encoder *bin.Encoder) (err error) {
	if err = encoder.WriteBytes(Account_EpochAccount[:], false); err != nil {
		return err
	}
	if err = encoder.WriteUint64(obj.Epoch, binary.LittleEndian); err != nil {
		return err
	}
	if err = encoder.Encode(obj.Fields); err != nil {
		return err
	}
	if err = encoder.WriteUint64(obj.Winner, binary.LittleEndian); err != nil {
		return err
	}
	return encoder.WriteUint64(obj.Reward, binary.LittleEndian)
}

func (obj *EpochAccount) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	if err = readDiscriminator(decoder, Account_EpochAccount, "EpochAccount"); err != nil {
		return err
	}
	if obj.Epoch, err = decoder.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	if err = decoder.Decode(&obj.Fields); err != nil {
		return err
	}
	if obj.Winner, err = decoder.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	obj.Reward, err = decoder.ReadUint64(binary.LittleEndian)
	return err
}

// VoteAccount is one wallet's vote weights for one epoch.
type VoteAccount struct {
	Owner  solana.PublicKey
	Epoch  uint64
	Fields []uint64
}

func (obj VoteAccount) MarshalWithEncoder(encoder *bin.Encoder) (err error) {
	if err = encoder.WriteBytes(Account_VoteAccount[:], false); err != nil {
		return err
	}
	if err = encoder.Encode(obj.Owner); err != nil {
		return err
	}
	if err = encoder.WriteUint64(obj.Epoch, binary.LittleEndian); err != nil {
		return err
	}
	return encoder.Encode(obj.Fields)
}

func (obj *VoteAccount) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	if err = readDiscriminator(decoder, Account_VoteAccount, "VoteAccount"); err != nil {
		return err
	}
	if err = decoder.Decode(&obj.Owner); err != nil {
		return err
	}
	if obj.Epoch, err = decoder.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	return decoder.Decode(&obj.Fields)
}

func ParseAccount_GlobalDataAccount(accountData []byte) (*GlobalDataAccount, error) {
	acc := new(GlobalDataAccount)
	if err := acc.UnmarshalWithDecoder(bin.NewBorshDecoder(accountData)); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account as GlobalDataAccount: %w", err)
	}
	return acc, nil
}

func ParseAccount_UserDataAccount(accountData []byte) (*UserDataAccount, error) {
	acc := new(UserDataAccount)
	if err := acc.UnmarshalWithDecoder(bin.NewBorshDecoder(accountData)); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account as UserDataAccount: %w", err)
	}
	return acc, nil
}

func ParseAccount_LockAccount(accountData []byte) (*LockAccount, error) {
	acc := new(LockAccount)
	if err := acc.UnmarshalWithDecoder(bin.NewBorshDecoder(accountData)); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account as LockAccount: %w", err)
	}
	return acc, nil
}

func ParseAccount_EpochAccount(accountData []byte) (*EpochAccount, error) {
	acc := new(EpochAccount)
	if err := acc.UnmarshalWithDecoder(bin.NewBorshDecoder(accountData)); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account as EpochAccount: %w", err)
	}
	return acc, nil
}

func ParseAccount_VoteAccount(accountData []byte) (*VoteAccount, error) {
	acc := new(VoteAccount)
	if err := acc.UnmarshalWithDecoder(bin.NewBorshDecoder(accountData)); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account as VoteAccount: %w", err)
	}
	return acc, nil
}
