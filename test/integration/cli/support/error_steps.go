package support

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// theErrorShouldMentionChecksum verifies a checksum mismatch was reported.
func (testCtx *TestContext) theErrorShouldMentionChecksum() error {
	return testCtx.theErrorShouldMention("checksum_mismatch")
}

// theErrorShouldMentionLength verifies an invalid length was reported.
func (testCtx *TestContext) theErrorShouldMentionLength() error {
	return testCtx.theErrorShouldMention("length")
}

// theErrorShouldMentionNonNumeric verifies a non-numeric character was reported.
func (testCtx *TestContext) theErrorShouldMentionNonNumeric() error {
	return testCtx.theErrorShouldMention("non_numeric_character")
}

// theErrorShouldMentionCheckDigit verifies the expected and actual check digits
// appear in the output.
func (testCtx *TestContext) theErrorShouldMentionCheckDigit(expected, actual string) error {
	want := fmt.Sprintf("expected check digit %s, got %s", expected, actual)
	if !strings.Contains(testCtx.LastOutput, want) {
		return fmt.Errorf("output does not mention '%s'\nActual output: %s", want, testCtx.LastOutput)
	}
	return nil
}

// theResponseErrorTypeShouldBe verifies error_type in the last HTTP response.
func (testCtx *TestContext) theResponseErrorTypeShouldBe(errorType string) error {
	return checkJSONField(testCtx.LastHTTPResponse, "error_type", errorType)
}

// RegisterErrorSteps registers error-related step definitions.
func (testCtx *TestContext) RegisterErrorSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the error should mention a checksum mismatch$`, testCtx.theErrorShouldMentionChecksum)
	sc.Step(`^the error should mention an invalid length$`, testCtx.theErrorShouldMentionLength)
	sc.Step(`^the error should mention a non-numeric character$`, testCtx.theErrorShouldMentionNonNumeric)
	sc.Step(`^the output should report expected check digit (\d) but got (\d)$`, testCtx.theErrorShouldMentionCheckDigit)
	sc.Step(`^the response error type should be "([^"]*)"$`, testCtx.theResponseErrorTypeShouldBe)
}
