package plugin

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

var (
	responseVoteCounted = &i18n.Message{
		ID:    "response.vote.counted",
		Other: "Your vote has been counted.",
	}
	responseVoteRemoved = &i18n.Message{
		ID:    "response.vote.removed",
		Other: "Your vote has been removed.",
	}
	responseVoteUpdated = &i18n.Message{
		ID:    "response.vote.updated",
		Other: "Your vote has been updated.",
	}

	responseYourVotes = &i18n.Message{
		ID:    "response.yourVotes",
		Other: "You voted for {{.Options}}.",
	}
	responseYourVotesNone = &i18n.Message{
		ID:    "response.yourVotes.none",
		Other: "You have not voted yet.",
	}

	responseAddOptionSuccess = &i18n.Message{
		ID:    "response.addOption.success",
		Other: "Successfully added the option.",
	}
	responseAddOptionInvalidPermission = &i18n.Message{
		ID:    "response.addOption.invalidPermission",
		Other: "Only the creator of a poll is allowed to add options.",
	}
	responseDeleteOptionSuccess = &i18n.Message{
		ID:    "response.deleteOption.success",
		Other: "Successfully deleted the option.",
	}
	responseDeleteOptionInvalidPermission = &i18n.Message{
		ID:    "response.deleteOption.invalidPermission",
		Other: "Only the creator of a poll is allowed to delete options.",
	}

	responseClosePollSuccess = &i18n.Message{
		ID:    "response.closePoll.success",
		Other: "The poll **{{.Question}}** has been closed. The results have been posted in the thread.",
	}
	responseClosePollInvalidPermission = &i18n.Message{
		ID:    "response.closePoll.invalidPermission",
		Other: "Only the creator of a poll is allowed to close it.",
	}
	responsePollAlreadyClosed = &i18n.Message{
		ID:    "response.poll.alreadyClosed",
		Other: "This poll is already closed.",
	}

	responseDeletePollSuccess = &i18n.Message{
		ID:    "response.deletePoll.success",
		Other: "Successfully deleted the poll.",
	}
	responseDeletePollInvalidPermission = &i18n.Message{
		ID:    "response.deletePoll.invalidPermission",
		Other: "Only the creator of a poll is allowed to delete it.",
	}

	responsePollNotFound = &i18n.Message{
		ID:    "response.poll.notFound",
		Other: "This poll does not exist anymore.",
	}

	commandErrorGeneric = &i18n.Message{
		ID:    "command.error.generic",
		Other: "Something went wrong. Please try again later.",
	}
)

// localizableMessages lists the messages of this package, which need a translation in every language file.
var localizableMessages = []*i18n.Message{
	responseVoteCounted,
	responseVoteRemoved,
	responseVoteUpdated,
	responseYourVotes,
	responseYourVotesNone,
	responseAddOptionSuccess,
	responseAddOptionInvalidPermission,
	responseDeleteOptionSuccess,
	responseDeleteOptionInvalidPermission,
	responseClosePollSuccess,
	responseClosePollInvalidPermission,
	responsePollAlreadyClosed,
	responseDeletePollSuccess,
	responseDeletePollInvalidPermission,
	responsePollNotFound,
	commandErrorGeneric,
	commandHelpText,
	commandInfoText,
	commandAutoCompleteDesc,
	commandAutoCompleteHint,
	dialogCreateTitle,
	dialogCreateSubmitLabel,
	dialogCreateQuestion,
	dialogCreateOptions,
	dialogCreateOptionsHelp,
	dialogCreateMultiple,
	dialogCreateLimit,
	dialogCreateAnonymous,
	dialogCreateCustom,
	dialogAddOptionTitle,
	dialogAddOptionSubmitLabel,
	dialogAddOptionElement,
}

func localizeMessage(m *i18n.Message) *i18n.LocalizeConfig {
	return &i18n.LocalizeConfig{DefaultMessage: m}
}
