package ogc_reserve

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

func epochSeed(epoch uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, epoch)
	return b
}

// GetGlobalDataPDA returns the PDA of the program's global data account.
func GetGlobalDataPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			[]byte("global"),
		},
		programID,
	)
}

// GetProgramHolderPDA returns the PDA of the token account holding the program's OGC.
func GetProgramHolderPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			[]byte("holder"),
		},
		programID,
	)
}

// GetUserVaultPDA returns the PDA of the token account holding a wallet's locked OGG.
func GetUserVaultPDA(programID, owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			[]byte("vault"),
			owner.Bytes(),
		},
		programID,
	)
}

func GetUserDataPDA(programID, owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			[]byte("data"),
			owner.Bytes(),
		},
		programID,
	)
}

func GetLockAccountPDA(programID, owner solana.PublicKey, epoch uint64) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			[]byte("lock"),
			owner.Bytes(),
			epochSeed(epoch),
		},
		programID,
	)
}

func GetEpochAccountPDA(programID solana.PublicKey, epoch uint64) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			[]byte("epoch"),
			epochSeed(epoch),
		},
		programID,
	)
}

func GetVoteAccountPDA(programID, owner solana.PublicKey, epoch uint64) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			[]byte("vote"),
			owner.Bytes(),
			epochSeed(epoch),
		},
		programID,
	)
}
