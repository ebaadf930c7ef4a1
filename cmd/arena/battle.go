package main

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"strconv"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/daughters-of-aether/arena-client/pkg/arena"
	"github.com/daughters-of-aether/arena-client/pkg/battle"
	"github.com/daughters-of-aether/arena-client/pkg/battle/history"
	history_file "github.com/daughters-of-aether/arena-client/pkg/battle/history/file"
	"github.com/daughters-of-aether/arena-client/pkg/character"
	"github.com/daughters-of-aether/arena-client/pkg/pointer"
	"github.com/daughters-of-aether/arena-client/pkg/solana"
	"github.com/daughters-of-aether/arena-client/pkg/stake"
	"github.com/daughters-of-aether/arena-client/pkg/toast"
	toast_memory "github.com/daughters-of-aether/arena-client/pkg/toast/memory"
	"github.com/daughters-of-aether/arena-client/pkg/wallet"
)

var (
	stakeFlag     string
	characterFlag string
	assumeYes     bool
)

var battleCmd = &cobra.Command{
	Use:   "battle",
	Short: "Create battles and review past attempts",
}

var battleCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a staked battle",
	Args:  cobra.NoArgs,
	RunE:  runBattleCreate,
}

var battleShowCmd = &cobra.Command{
	Use:   "show <address>",
	Short: "Look up a battle account on chain",
	Args:  cobra.ExactArgs(1),
	RunE:  runBattleShow,
}

var battleHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List battle creation attempts for the current wallet",
	Args:  cobra.NoArgs,
	RunE:  runBattleHistory,
}

func init() {
	battleCreateCmd.Flags().StringVar(&stakeFlag, "stake", "", "stake in SOL, e.g. 0.01 (prompted when omitted)")
	battleCreateCmd.Flags().StringVar(&characterFlag, "character", "", "character to fight as, by name or id")
	battleCreateCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "sign without asking for approval")

	battleCmd.AddCommand(battleCreateCmd, battleShowCmd, battleHistoryCmd)
	rootCmd.AddCommand(battleCmd)
}

func newToastStore() toast.Store {
	return toast_memory.New()
}

func runBattleCreate(cmd *cobra.Command, args []string) error {
	ctx := rootContext

	approver := wallet.AutoApprove
	if !assumeYes {
		approver = confirmTransaction
	}

	w, err := loadWallet(wallet.WithApprover(approver))
	if err != nil {
		return reportError(err)
	}

	program, err := env.Program()
	if err != nil {
		return reportError(err)
	}

	historyPath, err := getHistoryPath()
	if err != nil {
		return reportError(err)
	}

	var selection character.Selection
	if err := selectCharacter(&selection); err != nil {
		return reportError(err)
	}

	validator := stake.NewValidator(stake.WithEnvConfigs())
	stakeLamports, err := chooseStake(ctx, validator, w)
	if err != nil {
		return reportError(err)
	}

	fmt.Println(field("Network", env.NetworkLabel))
	fmt.Println(field("Player", w.PublicKey()))
	fmt.Println(field("Stake", stake.FormatLamports(stakeLamports)+" SOL"))
	if c, ok := selection.Selected(); ok {
		fmt.Println(field("Character", fmt.Sprintf("%s (%s)", c.Name, c.Element)))
	}

	creator := battle.NewCreator(
		getRPCClient(),
		program,
		battle.WithEnvConfigs(),
		battle.WithStakeValidator(validator),
		battle.WithNotifier(toast.NewNotifier(toastStore)),
		battle.WithHistory(history_file.New(historyPath)),
		battle.WithExplorer(env.TransactionURL),
		battle.WithNetworkLabel(env.NetworkLabel),
		battle.WithStatusListener(printStatus),
	)

	result := creator.CreateBattle(ctx, int64(stakeLamports), w)
	printToasts(ctx)

	if !result.Success() {
		if errors.Is(result.Err, battle.ErrStakeInvalid) {
			b, err := w.Balance(ctx)
			balance := pointer.Uint64IfValid(err == nil, b)
			printValidation(validator.Validate(ctx, int64(stakeLamports), balance))
		}
		return result.Err
	}

	fmt.Println(field("Battle", result.BattleAccount))
	fmt.Println(field("Signature", result.Signature))
	fmt.Println(field("Explorer", env.TransactionURL(result.Signature)))
	return nil
}

func runBattleHistory(cmd *cobra.Command, args []string) error {
	ctx := rootContext

	w, err := loadWallet()
	if err != nil {
		return reportError(err)
	}

	historyPath, err := getHistoryPath()
	if err != nil {
		return reportError(err)
	}

	records, err := history_file.New(historyPath).GetAll(ctx, w.PublicKey())
	if errors.Is(err, history.ErrRecordNotFound) {
		fmt.Println(promptStyle.Render("No battles yet."))
		return nil
	} else if err != nil {
		return reportError(err)
	}

	for _, record := range records {
		printRecord(record)
	}
	return nil
}

func runBattleShow(cmd *cobra.Command, args []string) error {
	address, err := base58.Decode(args[0])
	if err != nil || len(address) != ed25519.PublicKeySize {
		return reportError(errors.Errorf("invalid battle address %q", args[0]))
	}

	program, err := env.Program()
	if err != nil {
		return reportError(err)
	}

	account, err := arena.GetBattleAccount(rootContext, getRPCClient(), program, address)
	if errors.Is(err, solana.ErrNoAccountInfo) {
		fmt.Println(warningStyle.Render(fmt.Sprintf("No battle at %s on %s.", args[0], env.NetworkLabel)))
		return nil
	} else if err != nil {
		return reportError(err)
	}

	fmt.Println(field("Battle", base58.Encode(account.Address)))
	fmt.Println(field("Balance", stake.FormatLamports(account.Lamports)+" SOL"))
	fmt.Println(field("Size", fmt.Sprintf("%d bytes", len(account.Data))))
	fmt.Println(field("Explorer", env.AccountURL(args[0])))
	return nil
}

func selectCharacter(selection *character.Selection) error {
	if characterFlag != "" {
		c, err := lookupCharacter(characterFlag)
		if err != nil {
			return err
		}
		selection.Select(c)
		return nil
	}

	if assumeYes {
		return nil
	}

	roster := character.All()
	options := make([]string, 0, len(roster)+1)
	for _, c := range roster {
		options = append(options, fmt.Sprintf("%s (%s)", c.Name, c.Element))
	}
	options = append(options, "Skip")

	selection.Show()
	var choice int
	prompt := &survey.Select{
		Message: promptStyle.Render("Choose your daughter:"),
		Options: options,
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return err
	}
	if choice < len(roster) {
		selection.Select(roster[choice])
	} else {
		selection.Hide()
	}
	return nil
}

func lookupCharacter(nameOrID string) (character.Character, error) {
	if id, err := strconv.Atoi(nameOrID); err == nil {
		return character.ByID(id)
	}
	return character.ByName(nameOrID)
}

// chooseStake uses --stake when given and otherwise offers the suggestions
// the wallet balance can cover.
func chooseStake(ctx context.Context, validator *stake.Validator, w *wallet.Wallet) (uint64, error) {
	if stakeFlag != "" {
		return stake.ParseSol(stakeFlag)
	}

	if assumeYes {
		return validator.Limits(ctx).RecommendedLamports, nil
	}

	var suggestions []stake.Suggestion
	if balance, err := w.Balance(ctx); err == nil {
		fmt.Println(field("Balance", stake.FormatLamports(balance)+" SOL"))
		suggestions = validator.Suggestions(ctx, balance)
	}

	options := make([]string, 0, len(suggestions)+1)
	for _, s := range suggestions {
		options = append(options, fmt.Sprintf("%s: %s SOL (%s)", s.Label, stake.FormatLamports(s.ValueLamports), s.Description))
	}
	options = append(options, "Custom amount")

	var choice int
	if err := survey.AskOne(&survey.Select{
		Message: promptStyle.Render("Choose your stake:"),
		Options: options,
	}, &choice); err != nil {
		return 0, err
	}
	if choice < len(suggestions) {
		return suggestions[choice].ValueLamports, nil
	}

	var amount string
	if err := survey.AskOne(&survey.Input{
		Message: promptStyle.Render("Stake in SOL:"),
		Default: stake.FormatLamports(validator.Limits(ctx).RecommendedLamports),
	}, &amount, survey.WithValidator(survey.Required)); err != nil {
		return 0, err
	}
	return stake.ParseSol(amount)
}

func confirmTransaction(_ context.Context, tx *solana.Transaction) (bool, error) {
	fmt.Println(cardStyle.Render(describeTransaction(tx)))

	approved := false
	err := survey.AskOne(&survey.Confirm{
		Message: promptStyle.Render("Sign and send this transaction?"),
		Default: false,
	}, &approved)
	return approved, err
}

func describeTransaction(tx *solana.Transaction) string {
	desc := field("Fee payer", base58.Encode(tx.FeePayer())) + "\n"
	desc += field("Blockhash", tx.Message.RecentBlockhash.String()) + "\n"
	desc += field("Signers", len(tx.Signers())) + "\n"
	desc += field("Instructions", len(tx.Message.Instructions))
	return desc
}

func printStatus(state battle.State) {
	switch state.Status {
	case battle.StatusPending:
		if state.BattleAccount == "" {
			fmt.Println(infoStyle.Render("Creating battle..."))
		}
	case battle.StatusSuccess:
		fmt.Println(successStyle.Render("Battle confirmed"))
	}
}

func printToasts(ctx context.Context) {
	toasts, err := toastStore.List(ctx)
	if err != nil {
		return
	}
	for _, t := range toasts {
		fmt.Println(toastLine(t))
		_ = toastStore.Remove(ctx, t.Id)
	}
}

func printValidation(validation *stake.Validation) {
	for _, e := range validation.Errors {
		fmt.Println(errorStyle.Render("✖ " + e))
	}
	for _, w := range validation.Warnings {
		fmt.Println(warningStyle.Render("! " + w))
	}
}

func printRecord(record *history.Record) {
	style := successStyle
	if record.State != history.StateSucceeded {
		style = errorStyle
	}

	fmt.Println(style.Render(fmt.Sprintf("%s  %s", record.CreatedAt.Local().Format(time.RFC822), record.State)))
	fmt.Println(field("Battle", record.BattleAccount))
	fmt.Println(field("Stake", stake.FormatLamports(record.StakeLamports)+" SOL"))
	fmt.Println(field("Network", record.Network))
	if record.Signature != "" {
		fmt.Println(field("Signature", record.Signature))
	}
	if record.Error != "" {
		fmt.Println(field("Error", record.Error))
	}
	fmt.Println()
}
