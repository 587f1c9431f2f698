// Package numeric centralizes the three-digit IRC reply codes used by
// command handlers (spec.md §6), replacing the teacher's practice of
// embedding the numeric as a string literal ("403", "461", ...) at each
// call site in command.go/local_user.go.
package numeric

const (
	RplWelcome  = "001"
	RplYourHost = "002"
	RplCreated  = "003"
	RplMyInfo   = "004"
	RplISupport = "005"

	RplUmodeIs = "221"

	RplLUserClient   = "251"
	RplLUserOp       = "252"
	RplLUserUnknown  = "253"
	RplLUserChannels = "254"
	RplLUserMe       = "255"

	RplAway       = "301"
	RplUnAway     = "305"
	RplNowAway    = "306"
	RplWhoisUser  = "311"
	RplWhoisOper  = "313"
	RplEndOfWho   = "315"
	RplWhoisIdle  = "317"
	RplEndOfWhois = "318"
	RplWhoisChans = "319"

	RplChannelModeIs = "324"
	RplNoTopic       = "331"
	RplTopic         = "332"
	RplTopicWhoTime  = "333"
	RplInviting      = "341"
	RplBanList       = "367"
	RplEndOfBanList  = "368"

	RplNamReply   = "353"
	RplEndOfNames = "366"

	RplMotdStart = "375"
	RplMotd      = "372"
	RplEndOfMotd = "376"

	RplYoureOper = "381"
	RplRehashing = "382"

	ErrNoSuchNick     = "401"
	ErrNoSuchServer   = "402"
	ErrNoSuchChannel  = "403"
	ErrCannotSendChan = "404"
	ErrNoRecipient    = "411"
	ErrNoTextToSend   = "412"
	ErrUnknownCommand = "421"
	ErrNoMotd         = "422"
	ErrNotRegistered  = "451"
	ErrNoNickGiven    = "431"
	ErrErroneousNick  = "432"
	ErrNickInUse      = "433"
	ErrNickTooLong    = "436"
	ErrUserOnChannel  = "443"
	ErrNotOnChannel   = "442"

	ErrNeedMoreParams  = "461"
	ErrAlreadyRegistrd = "462"
	ErrPasswdMismatch  = "464"
	ErrYoureBannedCreep = "465"

	ErrKeySet          = "467"
	ErrChannelIsFull   = "471"
	ErrUnknownMode     = "472"
	ErrInviteOnlyChan  = "473"
	ErrBannedFromChan  = "474"
	ErrBadChannelKey   = "475"

	ErrNoPrivileges  = "481"
	ErrChanOPrivsNeeded = "482"
	ErrNoOperHost    = "491"

	ErrUModeUnknownFlag = "501"
	ErrUsersDontMatch   = "502"
)
