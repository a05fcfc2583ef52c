package ogc_reserve

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Instruction discriminators: sha256("global:<snake_case_name>")[:8].
var (
	Instruction_Initialize                  = [8]byte{175, 175, 109, 31, 13, 152, 155, 237}
	Instruction_InitializeFirstEpochAccount = [8]byte{33, 230, 21, 175, 58, 141, 235, 230}
	Instruction_NewEpoch                    = [8]byte{145, 132, 28, 115, 100, 138, 253, 96}
	Instruction_ModifyGlobalData            = [8]byte{119, 216, 52, 71, 13, 253, 135, 128}
	Instruction_DepositOgg                  = [8]byte{63, 52, 6, 146, 191, 116, 7, 83}
	Instruction_WithdrawOgg                 = [8]byte{1, 162, 86, 164, 70, 2, 154, 246}
	Instruction_Vote                        = [8]byte{227, 110, 155, 23, 136, 126, 172, 25}
	Instruction_CreateDataAccount           = [8]byte{129, 132, 92, 50, 136, 89, 37, 100}
	Instruction_CreateLockAccount           = [8]byte{11, 57, 81, 61, 73, 48, 136, 206}
	Instruction_Lock                        = [8]byte{21, 19, 208, 43, 237, 62, 255, 87}
	Instruction_Unlock                      = [8]byte{101, 155, 40, 21, 158, 189, 56, 203}
	Instruction_Claim                       = [8]byte{62, 198, 214, 193, 213, 159, 108, 210}
)

// encodeInstructionData writes the discriminator followed by the Borsh
// encoding of each argument, in order.
func encodeInstructionData(discriminator [8]byte, args ...interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(discriminator[:])
	enc := bin.NewBorshEncoder(buf)
	for i, arg := range args {
		if err := enc.Encode(arg); err != nil {
			return nil, fmt.Errorf("failed to encode argument %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

func newProgramInstruction(programID solana.PublicKey, accounts solana.AccountMetaSlice, discriminator [8]byte, args ...interface{}) (solana.Instruction, error) {
	data, err := encodeInstructionData(discriminator, args...)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

// NewInitializeInstruction creates the global data account and the program's OGC holder.
func NewInitializeInstruction(
	programID solana.PublicKey,
	signer solana.PublicKey,
	globalData solana.PublicKey,
	programHolder solana.PublicKey,
	ogcMint solana.PublicKey,
	oggMint solana.PublicKey,
) (solana.Instruction, error) {
	return newProgramInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(signer).WRITE().SIGNER(),
		solana.Meta(globalData).WRITE(),
		solana.Meta(programHolder).WRITE(),
		solana.Meta(ogcMint),
		solana.Meta(oggMint),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SysVarRentPubkey),
	}, Instruction_Initialize)
}

// NewInitializeFirstEpochAccountInstruction creates the epoch account for epoch 0.
func NewInitializeFirstEpochAccountInstruction(
	programID solana.PublicKey,
	signer solana.PublicKey,
	globalData solana.PublicKey,
	firstEpochAccount solana.PublicKey,
) (solana.Instruction, error) {
	return newProgramInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(signer).WRITE().SIGNER(),
		solana.Meta(globalData).WRITE(),
		solana.Meta(firstEpochAccount).WRITE(),
		solana.Meta(solana.SystemProgramID),
	}, Instruction_InitializeFirstEpochAccount)
}

func NewNewEpochInstruction(
	programID solana.PublicKey,
	epoch uint64,
	signer solana.PublicKey,
	globalData solana.PublicKey,
	prevEpochAccount solana.PublicKey,
	epochAccount solana.PublicKey,
) (solana.Instruction, error) {
	return newProgramInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(signer).WRITE().SIGNER(),
		solana.Meta(globalData).WRITE(),
		solana.Meta(prevEpochAccount),
		solana.Meta(epochAccount).WRITE(),
		solana.Meta(solana.SystemProgramID),
	}, Instruction_NewEpoch, epoch)
}

func NewModifyGlobalDataInstruction(
	programID solana.PublicKey,
	epochLockTime uint64,
	epochLength uint64,
	rewardPercent uint64,
	signer solana.PublicKey,
	globalData solana.PublicKey,
) (solana.Instruction, error) {
	return newProgramInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(signer).SIGNER(),
		solana.Meta(globalData).WRITE(),
	}, Instruction_ModifyGlobalData, epochLockTime, epochLength, rewardPercent)
}

// NewDepositOggInstruction moves OGC collateral from the signer into the program holder.
// The on-chain name predates the OGC/OGG split and is kept for the discriminator.
func NewDepositOggInstruction(
	programID solana.PublicKey,
	amount uint64,
	signer solana.PublicKey,
	globalData solana.PublicKey,
	signerTokenAccount solana.PublicKey,
	programHolder solana.PublicKey,
) (solana.Instruction, error) {
	return newProgramInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(signer).WRITE().SIGNER(),
		solana.Meta(globalData),
		solana.Meta(signerTokenAccount).WRITE(),
		solana.Meta(programHolder).WRITE(),
		solana.Meta(solana.TokenProgramID),
	}, Instruction_DepositOgg, amount)
}

func NewWithdrawOggInstruction(
	programID solana.PublicKey,
	amount uint64,
	signer solana.PublicKey,
	globalData solana.PublicKey,
	signerTokenAccount solana.PublicKey,
	programHolder solana.PublicKey,
) (solana.Instruction, error) {
	return newProgramInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(signer).WRITE().SIGNER(),
		solana.Meta(globalData),
		solana.Meta(signerTokenAccount).WRITE(),
		solana.Meta(programHolder).WRITE(),
		solana.Meta(solana.TokenProgramID),
	}, Instruction_WithdrawOgg, amount)
}

func NewVoteInstruction(
	programID solana.PublicKey,
	epoch uint64,
	votes []uint64,
	signer solana.PublicKey,
	globalData solana.PublicKey,
	userData solana.PublicKey,
	epochAccount solana.PublicKey,
	voteAccount solana.PublicKey,
) (solana.Instruction, error) {
	return newProgramInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(signer).WRITE().SIGNER(),
		solana.Meta(globalData),
		solana.Meta(userData),
		solana.Meta(epochAccount).WRITE(),
		solana.Meta(voteAccount).WRITE(),
		solana.Meta(solana.SystemProgramID),
	}, Instruction_Vote, epoch, votes)
}

// NewCreateDataAccountInstruction creates the signer's user data account and OGG vault.
func NewCreateDataAccountInstruction(
	programID solana.PublicKey,
	signer solana.PublicKey,
	userData solana.PublicKey,
	oggMint solana.PublicKey,
	userVault solana.PublicKey,
) (solana.Instruction, error) {
	return newProgramInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(signer).WRITE().SIGNER(),
		solana.Meta(userData).WRITE(),
		solana.Meta(oggMint),
		solana.Meta(userVault).WRITE(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SysVarRentPubkey),
	}, Instruction_CreateDataAccount)
}

func NewCreateLockAccountInstruction(
	programID solana.PublicKey,
	epoch uint64,
	signer solana.PublicKey,
	lockAccount solana.PublicKey,
) (solana.Instruction, error) {
	return newProgramInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(signer).WRITE().SIGNER(),
		solana.Meta(lockAccount).WRITE(),
		solana.Meta(solana.SystemProgramID),
	}, Instruction_CreateLockAccount, epoch)
}

func NewLockInstruction(
	programID solana.PublicKey,
	epoch uint64,
	amount uint64,
	signer solana.PublicKey,
	globalData solana.PublicKey,
	userData solana.PublicKey,
	lockAccount solana.PublicKey,
	signerTokenAccount solana.PublicKey,
	userVault solana.PublicKey,
) (solana.Instruction, error) {
	return newProgramInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(signer).WRITE().SIGNER(),
		solana.Meta(globalData),
		solana.Meta(userData).WRITE(),
		solana.Meta(lockAccount).WRITE(),
		solana.Meta(signerTokenAccount).WRITE(),
		solana.Meta(userVault).WRITE(),
		solana.Meta(solana.TokenProgramID),
	}, Instruction_Lock, epoch, amount)
}

// NewUnlockInstruction releases the whole balance of one eligible lock account.
func NewUnlockInstruction(
	programID solana.PublicKey,
	signer solana.PublicKey,
	globalData solana.PublicKey,
	userData solana.PublicKey,
	lockAccount solana.PublicKey,
	signerTokenAccount solana.PublicKey,
	userVault solana.PublicKey,
) (solana.Instruction, error) {
	return newProgramInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(signer).WRITE().SIGNER(),
		solana.Meta(globalData),
		solana.Meta(userData).WRITE(),
		solana.Meta(lockAccount).WRITE(),
		solana.Meta(signerTokenAccount).WRITE(),
		solana.Meta(userVault).WRITE(),
		solana.Meta(solana.TokenProgramID),
	}, Instruction_Unlock)
}

func NewClaimInstruction(
	programID solana.PublicKey,
	epoch uint64,
	signer solana.PublicKey,
	globalData solana.PublicKey,
	epochAccount solana.PublicKey,
	voteAccount solana.PublicKey,
	signerTokenAccount solana.PublicKey,
	programHolder solana.PublicKey,
) (solana.Instruction, error) {
	return newProgramInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(signer).WRITE().SIGNER(),
		solana.Meta(globalData),
		solana.Meta(epochAccount),
		solana.Meta(voteAccount).WRITE(),
		solana.Meta(signerTokenAccount).WRITE(),
		solana.Meta(programHolder).WRITE(),
		solana.Meta(solana.TokenProgramID),
	}, Instruction_Claim, epoch)
}
